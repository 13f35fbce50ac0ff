package leastsquares

import (
	"fmt"

	"github.com/aouyang1/go-leastsquares/solvers"
	"gonum.org/v1/gonum/floats"
)

// StaticRegressor computes one-shot least squares coefficients with optional
// L2 and L1 penalties, sample weighting, and non-negativity constraints.
type StaticRegressor struct {
	opt *OLSOptions
}

// NewStaticRegressor initializes a static regressor ready for fitting.
func NewStaticRegressor(opt *OLSOptions) (*StaticRegressor, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &StaticRegressor{
		opt: opt,
	}, nil
}

// FitCoefficients fits the model and returns the named coefficient vector.
func (s *StaticRegressor) FitCoefficients(target Series, features []Series, weights []float64, addIntercept bool) (*Coefficients, error) {
	d, err := newDesign(target, features, weights, addIntercept, s.opt.NullPolicy)
	if err != nil {
		return nil, err
	}
	beta, err := s.fit(d)
	if err != nil {
		return nil, err
	}
	return NewCoefficients(d.names, beta)
}

// FitPredictions fits the model and broadcasts the coefficient vector across
// all rows. Rows excluded from fitting under the drop policy produce NaN.
func (s *StaticRegressor) FitPredictions(target Series, features []Series, weights []float64, addIntercept bool) ([]float64, error) {
	_, pred, err := s.fitPredict(target, features, weights, addIntercept)
	return pred, err
}

// FitResiduals fits the model and returns target minus predictions.
func (s *StaticRegressor) FitResiduals(target Series, features []Series, weights []float64, addIntercept bool) ([]float64, error) {
	d, pred, err := s.fitPredict(target, features, weights, addIntercept)
	if err != nil {
		return nil, err
	}
	return d.residuals(pred), nil
}

func (s *StaticRegressor) fitPredict(target Series, features []Series, weights []float64, addIntercept bool) (*design, []float64, error) {
	d, err := newDesign(target, features, weights, addIntercept, s.opt.NullPolicy)
	if err != nil {
		return nil, nil, err
	}
	beta, err := s.fit(d)
	if err != nil {
		return nil, nil, err
	}

	pred := make([]float64, d.n)
	for j, col := range d.cols {
		floats.AddScaled(pred, beta[j], col)
	}
	return d, d.finish(pred), nil
}

func (s *StaticRegressor) fit(d *design) ([]float64, error) {
	y, cols := d.fitRows()
	if len(y) == 0 {
		return nil, ErrNoValidRows
	}

	method := s.opt.method()
	switch method {
	case solvers.MethodCD:
		x, err := solvers.NewDenseFromColumns(cols)
		if err != nil {
			return nil, err
		}
		return solvers.SolveElasticNet(x, y, &solvers.ElasticNetOptions{
			Alpha:    s.opt.Alpha,
			L1Ratio:  s.opt.L1Ratio,
			MaxIter:  s.opt.MaxIter,
			Tol:      s.opt.Tol,
			Positive: s.opt.Positive,
		})
	case solvers.MethodQR, solvers.MethodSVD:
		x, err := solvers.NewDenseFromColumns(cols)
		if err != nil {
			return nil, err
		}
		if s.opt.Alpha > 0 {
			return solvers.SolveRidgeSVD(x, y, s.opt.Alpha, s.opt.RCond)
		}
		return solvers.SolveOLS(x, y, method, s.opt.RCond)
	case solvers.MethodChol, solvers.MethodLU:
		if s.opt.Alpha == 0 && d.k > len(y) {
			return nil, fmt.Errorf("%d features with %d observations under %q, %w",
				d.k, len(y), string(method), ErrRankDeficient)
		}
		xtx, xty := solvers.NormalEquations(cols, y)
		return solvers.SolveNormal(xtx, xty, s.opt.Alpha, method == solvers.MethodChol)
	}
	return nil, fmt.Errorf("%q, %w", string(method), solvers.ErrUnknownMethod)
}
