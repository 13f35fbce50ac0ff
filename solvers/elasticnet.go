package solvers

import (
	"errors"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultMaxIter = 1000
	DefaultTol     = 1e-5
)

var (
	ErrNegativeAlpha   = errors.New("negative alpha")
	ErrInvalidL1Ratio  = errors.New("l1_ratio must be between 0 and 1")
	ErrNegativeMaxIter = errors.New("negative max iterations")
	ErrNegativeTol     = errors.New("negative tolerance")
)

// ElasticNetOptions represents input options to run coordinate descent over
// an elastic net objective.
type ElasticNetOptions struct {
	// Alpha is the overall regularization strength. Must be non-negative.
	Alpha float64

	// L1Ratio mixes the L1 and L2 penalties: 1 is full lasso, 0 full ridge.
	L1Ratio float64

	// MaxIter is the maximum number of full coordinate sweeps.
	MaxIter int

	// Tol is the largest coefficient change per sweep below which the
	// iteration stops.
	Tol float64

	// Positive clips coefficients at zero, enforcing non-negativity.
	Positive bool
}

// Validate runs basic validation on elastic net options.
func (o *ElasticNetOptions) Validate() (*ElasticNetOptions, error) {
	if o == nil {
		o = NewDefaultElasticNetOptions()
	}
	if o.Alpha < 0 {
		return nil, ErrNegativeAlpha
	}
	if o.L1Ratio < 0 || o.L1Ratio > 1 {
		return nil, ErrInvalidL1Ratio
	}
	if o.MaxIter < 0 {
		return nil, ErrNegativeMaxIter
	}
	if o.MaxIter == 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.Tol < 0 {
		return nil, ErrNegativeTol
	}
	if o.Tol == 0 {
		o.Tol = DefaultTol
	}
	return o, nil
}

// NewDefaultElasticNetOptions returns a default set of elastic net options.
func NewDefaultElasticNetOptions() *ElasticNetOptions {
	return &ElasticNetOptions{
		Alpha:   0.0,
		L1Ratio: 0.5,
		MaxIter: DefaultMaxIter,
		Tol:     DefaultTol,
	}
}

// SolveElasticNet minimizes 1/(2n)‖y − Xβ‖² + α·l1_ratio·‖β‖₁ +
// α/2·(1 − l1_ratio)·‖β‖² with cyclic coordinate descent using naive residual
// updates. Non-convergence within MaxIter sweeps is reported as a warning and
// the best iterate is returned.
func SolveElasticNet(x *mat.Dense, y []float64, opt *ElasticNetOptions) ([]float64, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	m, n := x.Dims()

	// precompute per feature columns and their squared norms
	xcols := make([][]float64, n)
	xdot := make([]float64, n)
	for j := 0; j < n; j++ {
		xcols[j] = mat.Col(nil, j, x)
		xdot[j] = floats.Dot(xcols[j], xcols[j])
	}

	// objective is scaled by the sample count
	alpha := opt.Alpha * float64(m)
	l1Penalty := alpha * opt.L1Ratio
	l2Penalty := alpha * (1.0 - opt.L1Ratio)

	beta := make([]float64, n)
	residual := make([]float64, m)
	copy(residual, y)

	converged := false
	for i := 0; i < opt.MaxIter; i++ {
		maxUpdate := 0.0

		for j := 0; j < n; j++ {
			betaCurr := beta[j]
			obsCol := xcols[j]

			// add back the current feature's contribution to the residual
			if betaCurr != 0 {
				floats.AddScaled(residual, betaCurr, obsCol)
			}

			betaNext := 0.0
			if denom := xdot[j] + l2Penalty; denom > 0 {
				betaNext = SoftThreshold(floats.Dot(obsCol, residual), l1Penalty, opt.Positive) / denom
			}

			if betaNext != 0 {
				floats.AddScaled(residual, -betaNext, obsCol)
			}

			maxUpdate = math.Max(maxUpdate, math.Abs(betaNext-betaCurr))
			beta[j] = betaNext
		}

		if maxUpdate < opt.Tol {
			converged = true
			break
		}
	}

	if !converged {
		slog.Warn("coordinate descent did not converge, returning best iterate",
			"max_iter", opt.MaxIter,
			"tol", opt.Tol,
		)
	}
	return beta, nil
}

// SoftThreshold shrinks the value toward zero by gamma, returning 0.0 when its
// magnitude is at most gamma. A positive constraint clips negative results.
func SoftThreshold(x, gamma float64, positive bool) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if math.Signbit(x) {
		res = -res
	}
	if positive && res < 0 {
		return 0
	}
	return res
}
