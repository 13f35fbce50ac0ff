// Package solvers is a collection of dense linear system solvers backing the
// least squares regressors. All solvers operate in 64-bit floating point.
package solvers

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMethod    = errors.New("unknown solve method")
	ErrSingularMatrix   = errors.New("singular normal matrix")
	ErrConstraintSolver = errors.New("L1 or positivity constraints require the coordinate descent solver")
	ErrRidgeSolver      = errors.New("qr does not support an L2 penalty")
)

// Method selects the factorization or iteration used to compute coefficients.
type Method string

const (
	// MethodQR computes an economy QR factorization of the design matrix.
	// Preferred default for well-conditioned unregularized problems.
	MethodQR Method = "qr"

	// MethodSVD computes a singular value decomposition with a cutoff on
	// small singular values. Handles rank-deficient systems.
	MethodSVD Method = "svd"

	// MethodChol factorizes the regularized normal matrix with Cholesky.
	// Fastest, requires the matrix to be positive definite.
	MethodChol Method = "chol"

	// MethodLU factorizes the normal matrix with partially pivoted LU.
	// General fallback.
	MethodLU Method = "lu"

	// MethodCD runs cyclic coordinate descent. The only method supporting L1
	// penalties and non-negativity constraints.
	MethodCD Method = "cd"
)

// Parse converts a solve method tag to a Method, rejecting unrecognized tags.
func Parse(s string) (Method, error) {
	m := Method(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate checks that the method is one of the recognized tags. An empty
// method is valid and resolved later by Auto.
func (m Method) Validate() error {
	switch m {
	case MethodQR, MethodSVD, MethodChol, MethodLU, MethodCD, "":
		return nil
	}
	return fmt.Errorf("%q, %w", string(m), ErrUnknownMethod)
}

// Auto picks a solve method from the requested penalties and constraints.
// Coordinate descent when an L1 penalty or non-negativity constraint is
// present, Cholesky when only an L2 penalty is present, and QR otherwise.
func Auto(alpha, l1Ratio float64, positive bool) Method {
	if l1Ratio > 0 || positive {
		return MethodCD
	}
	if alpha > 0 {
		return MethodChol
	}
	return MethodQR
}
