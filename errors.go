package leastsquares

import (
	"errors"
)

// Configuration and dimension errors are fatal and reported before any
// numeric work begins. Numerical errors surface from the solvers as
// solvers.ErrSingularMatrix.
var (
	ErrNoTarget             = errors.New("no target series")
	ErrNoFeatures           = errors.New("no feature series")
	ErrTargetLenMismatch    = errors.New("feature length does not match target length")
	ErrWeightLenMismatch    = errors.New("weights length does not match target length")
	ErrNegativeWeight       = errors.New("negative sample weight")
	ErrCoefLenMismatch      = errors.New("number of features does not match number of coefficients")
	ErrDuplicateFeature     = errors.New("duplicate feature name")
	ErrSequenceLenMismatch  = errors.New("coefficient sequence length does not match number of rows")
	ErrNoValidRows          = errors.New("no valid rows left for fitting after null policy")
	ErrRankDeficient        = errors.New("more features than observations for a solver requiring full rank")
	ErrNegativeHalfLife     = errors.New("negative half life")
	ErrNegativeInitialCov   = errors.New("negative initial state covariance")
	ErrInitialStateMeanSize = errors.New("initial state mean does not have one value per feature")
	ErrInvalidWindowSize    = errors.New("window size must be at least 1")
	ErrInvalidMinPeriods    = errors.New("min periods must be between 0 and the window size")
)
