package leastsquares

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-leastsquares/nullpolicy"
	"github.com/aouyang1/go-leastsquares/solvers"
)

// DefaultInitialStateCovariance is the prior state variance of the recursive
// regressor. It behaves like an inverse L2 penalty: larger values correspond
// to weaker regularization toward the initial state mean.
const DefaultInitialStateCovariance = 10.0

// OLSOptions represents input options to run a static regression with
// optional L1/L2 regularization and non-negativity constraints.
type OLSOptions struct {
	// Alpha is the regularization strength. 0.0 is ordinary least squares.
	Alpha float64 `json:"alpha"`

	// L1Ratio mixes L1 and L2 penalties: 0 is ridge, 1 is lasso. Any value
	// above 0 requires the coordinate descent solver.
	L1Ratio float64 `json:"l1_ratio"`

	// MaxIter is the maximum number of coordinate descent sweeps.
	MaxIter int `json:"max_iter"`

	// Tol is the convergence criterion of coordinate descent.
	Tol float64 `json:"tol"`

	// Positive enforces non-negativity on coefficients. Requires the
	// coordinate descent solver.
	Positive bool `json:"positive"`

	// NullPolicy selects the missing data strategy. Defaults to ignore.
	NullPolicy nullpolicy.Policy `json:"null_policy"`

	// SolveMethod selects the solve kernel. Empty selects a recommended
	// method based on the penalties and constraints requested.
	SolveMethod solvers.Method `json:"solve_method"`

	// RCond is the cutoff ratio for small singular values under the svd
	// method. 0 selects the numpy lstsq convention.
	RCond float64 `json:"rcond"`
}

// NewDefaultOLSOptions returns a default set of static regression options.
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		MaxIter:    solvers.DefaultMaxIter,
		Tol:        solvers.DefaultTol,
		NullPolicy: nullpolicy.Ignore,
	}
}

// Validate runs basic validation on static regression options.
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	if o.Alpha < 0 {
		return nil, solvers.ErrNegativeAlpha
	}
	if o.L1Ratio < 0 || o.L1Ratio > 1 {
		return nil, solvers.ErrInvalidL1Ratio
	}
	if o.MaxIter < 0 {
		return nil, solvers.ErrNegativeMaxIter
	}
	if o.Tol < 0 {
		return nil, solvers.ErrNegativeTol
	}
	if err := o.NullPolicy.Validate(); err != nil {
		return nil, err
	}
	if err := o.SolveMethod.Validate(); err != nil {
		return nil, err
	}
	if (o.L1Ratio > 0 || o.Positive) && o.SolveMethod != "" && o.SolveMethod != solvers.MethodCD {
		return nil, fmt.Errorf("solve_method %q with l1_ratio=%g positive=%t, %w",
			string(o.SolveMethod), o.L1Ratio, o.Positive, solvers.ErrConstraintSolver)
	}
	if o.Alpha > 0 && o.SolveMethod == solvers.MethodQR {
		return nil, fmt.Errorf("alpha=%g, %w", o.Alpha, solvers.ErrRidgeSolver)
	}
	return o, nil
}

func (o *OLSOptions) method() solvers.Method {
	if o.SolveMethod != "" {
		return o.SolveMethod
	}
	return solvers.Auto(o.Alpha, o.L1Ratio, o.Positive)
}

// RLSOptions represents input options of the recursive least squares
// regressor.
type RLSOptions struct {
	// HalfLife sets the exponential forgetting of past observations. 0
	// disables forgetting, giving an expanding window.
	HalfLife float64 `json:"half_life"`

	// InitialStateCovariance scales the prior covariance of the coefficient
	// state. 0 selects DefaultInitialStateCovariance.
	InitialStateCovariance float64 `json:"initial_state_covariance"`

	// InitialStateMean is the prior coefficient vector. Nil starts at zero.
	// When set it must have one value per feature, including the intercept.
	InitialStateMean []float64 `json:"initial_state_mean"`

	// NullPolicy selects the missing data strategy. Defaults to ignore.
	NullPolicy nullpolicy.Policy `json:"null_policy"`
}

// NewDefaultRLSOptions returns a default set of recursive regression options.
func NewDefaultRLSOptions() *RLSOptions {
	return &RLSOptions{
		InitialStateCovariance: DefaultInitialStateCovariance,
		NullPolicy:             nullpolicy.Ignore,
	}
}

// Validate runs basic validation on recursive regression options.
func (o *RLSOptions) Validate() (*RLSOptions, error) {
	if o == nil {
		o = NewDefaultRLSOptions()
	}
	if o.HalfLife < 0 {
		return nil, ErrNegativeHalfLife
	}
	if o.InitialStateCovariance < 0 {
		return nil, ErrNegativeInitialCov
	}
	if o.InitialStateCovariance == 0 {
		o.InitialStateCovariance = DefaultInitialStateCovariance
	}
	if err := o.NullPolicy.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// forgettingFactor converts the half life into the per-row decay λ, 1 when no
// half life is set.
func (o *RLSOptions) forgettingFactor() float64 {
	if o.HalfLife == 0 {
		return 1.0
	}
	return math.Exp(math.Log(0.5) / o.HalfLife)
}

// RollingOptions represents input options of the rolling window regressor.
type RollingOptions struct {
	// WindowSize is the number of most recent valid rows regressed against.
	WindowSize int `json:"window_size"`

	// MinPeriods is the number of observations required before estimates are
	// produced. 0 selects min(feature count, WindowSize).
	MinPeriods int `json:"min_periods"`

	// UseWoodbury maintains (XᵗX)⁻¹ directly through rank-one update and
	// downdate instead of refactorizing each row. Nil enables it when the
	// feature count exceeds 10.
	UseWoodbury *bool `json:"use_woodbury"`

	// Alpha is an optional L2 penalty applied once to the window statistics.
	Alpha float64 `json:"alpha"`

	// NullPolicy selects the missing data strategy. Defaults to ignore.
	NullPolicy nullpolicy.Policy `json:"null_policy"`
}

// NewDefaultRollingOptions returns a default set of rolling regression
// options with an effectively expanding window.
func NewDefaultRollingOptions() *RollingOptions {
	return &RollingOptions{
		WindowSize: 1_000_000,
		NullPolicy: nullpolicy.Ignore,
	}
}

// Validate runs basic validation on rolling regression options.
func (o *RollingOptions) Validate() (*RollingOptions, error) {
	if o == nil {
		o = NewDefaultRollingOptions()
	}
	if o.WindowSize < 1 {
		return nil, ErrInvalidWindowSize
	}
	if o.MinPeriods < 0 || o.MinPeriods > o.WindowSize {
		return nil, fmt.Errorf("min_periods %d with window size %d, %w", o.MinPeriods, o.WindowSize, ErrInvalidMinPeriods)
	}
	if o.Alpha < 0 {
		return nil, solvers.ErrNegativeAlpha
	}
	if err := o.NullPolicy.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}
