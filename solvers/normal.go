package solvers

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SolveNormal solves the normal equations (XᵗX + αI) β = Xᵗy. The matrix is
// factorized with Cholesky when requested, falling back to partially pivoted
// LU when the matrix is not positive definite.
func SolveNormal(xtx *mat.SymDense, xty []float64, alpha float64, useCholesky bool) ([]float64, error) {
	k := xtx.SymmetricDim()

	a := xtx
	if alpha > 0 {
		a = mat.NewSymDense(k, nil)
		a.CopySym(xtx)
		for i := 0; i < k; i++ {
			a.SetSym(i, i, a.At(i, i)+alpha)
		}
	}

	b := mat.NewVecDense(k, xty)
	coef := mat.NewVecDense(k, nil)

	if useCholesky {
		var chol mat.Cholesky
		if chol.Factorize(a) {
			if err := chol.SolveVecTo(coef, b); err == nil {
				return coef.RawVector().Data, nil
			}
		}
		slog.Warn("cholesky factorization failed, falling back to LU")
	}

	var lu mat.LU
	lu.Factorize(a)
	if err := lu.SolveVecTo(coef, false, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("lu solve of %dx%d normal matrix, %w", k, k, ErrSingularMatrix)
		}
		slog.Warn("normal matrix is ill-conditioned", "condition", float64(cond))
	}
	return coef.RawVector().Data, nil
}
