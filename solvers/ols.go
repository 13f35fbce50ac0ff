package solvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SolveOLS computes unregularized least squares coefficients of x against y
// using QR factorization or SVD. Systems with more features than observations
// are routed through SVD which produces the minimum-norm solution.
func SolveOLS(x *mat.Dense, y []float64, method Method, rcond float64) ([]float64, error) {
	m, n := x.Dims()
	if method == MethodQR && m < n {
		// QR cannot factorize a wide system; SVD yields the minimum-norm
		// solution instead.
		method = MethodSVD
	}

	switch method {
	case MethodQR:
		return solveQR(x, y)
	case MethodSVD:
		return SolveRidgeSVD(x, y, 0, rcond)
	}
	return nil, fmt.Errorf("%q, %w", string(method), ErrUnknownMethod)
}

func solveQR(x *mat.Dense, y []float64) ([]float64, error) {
	m, n := x.Dims()

	yMx := mat.NewDense(1, m, y)

	qr := new(mat.QR)
	qr.Factorize(x)

	q := new(mat.Dense)
	r := new(mat.Dense)

	qr.QTo(q)
	qr.RTo(r)
	yq := new(mat.Dense)
	yq.Mul(yMx, q)

	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		c[i] = yq.At(0, i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		rii := r.At(i, i)
		if rii == 0 {
			return nil, fmt.Errorf("zero pivot at column %d during back substitution, %w", i, ErrSingularMatrix)
		}
		c[i] /= rii
	}
	return c, nil
}

// SolveRidgeSVD solves a ridge regression through singular value
// decomposition. Singular values at or below rcond times the largest singular
// value are treated as zero. An rcond of zero or less selects the default
// cutoff of machine epsilon times the larger matrix dimension.
func SolveRidgeSVD(x *mat.Dense, y []float64, alpha, rcond float64) ([]float64, error) {
	m, n := x.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd factorization did not converge, %w", ErrSingularMatrix)
	}

	u := new(mat.Dense)
	v := new(mat.Dense)
	svd.UTo(u)
	svd.VTo(v)
	s := svd.Values(nil)

	if len(s) == 0 {
		return make([]float64, n), nil
	}
	if rcond <= 0 {
		rcond = defaultRCond(m, n)
	}
	cutoff := rcond * floats.Max(s)

	// d = s / (s² + alpha), with small singular values zeroed
	dUtY := make([]float64, len(s))
	for i, si := range s {
		if si <= cutoff {
			continue
		}
		uty := floats.Dot(mat.Col(nil, i, u), y)
		dUtY[i] = si / (si*si + alpha) * uty
	}

	coef := make([]float64, n)
	for i := 0; i < n; i++ {
		coef[i] = floats.Dot(v.RawRowView(i), dUtY)
	}
	return coef, nil
}

// defaultRCond follows the numpy lstsq convention of machine epsilon times
// the larger matrix dimension.
func defaultRCond(m, n int) float64 {
	dim := m
	if n > dim {
		dim = n
	}
	eps := math.Nextafter(1, 2) - 1
	return eps * float64(dim)
}
