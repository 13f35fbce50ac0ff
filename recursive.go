package leastsquares

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RecursiveRegressor estimates coefficients sequentially, updating a mean
// vector and covariance matrix with every observation in a Kalman-filter
// style recursion with exponential forgetting. It is numerically equivalent
// to an online ridge regression whose prior strength is the inverse of the
// initial state covariance.
type RecursiveRegressor struct {
	opt *RLSOptions
}

// NewRecursiveRegressor initializes a recursive regressor ready for fitting.
func NewRecursiveRegressor(opt *RLSOptions) (*RecursiveRegressor, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &RecursiveRegressor{
		opt: opt,
	}, nil
}

// FitCoefficients streams through all rows and returns one coefficient vector
// per row. Row t carries the state after observing rows up to and including
// t; rows skipped by the null policy carry the previous state forward.
func (r *RecursiveRegressor) FitCoefficients(target Series, features []Series, weights []float64, addIntercept bool) (*CoefficientSequence, error) {
	_, seq, _, err := r.run(target, features, weights, addIntercept)
	return seq, err
}

// FitPredictions streams through all rows and returns the causal one-step
// prediction for each row: row t is predicted with the state fit on rows up
// to t-1, before the row's own update.
func (r *RecursiveRegressor) FitPredictions(target Series, features []Series, weights []float64, addIntercept bool) ([]float64, error) {
	d, _, pred, err := r.run(target, features, weights, addIntercept)
	if err != nil {
		return nil, err
	}
	return d.finish(pred), nil
}

// FitResiduals streams through all rows and returns target minus the causal
// predictions.
func (r *RecursiveRegressor) FitResiduals(target Series, features []Series, weights []float64, addIntercept bool) ([]float64, error) {
	d, _, pred, err := r.run(target, features, weights, addIntercept)
	if err != nil {
		return nil, err
	}
	return d.residuals(d.finish(pred)), nil
}

func (r *RecursiveRegressor) run(target Series, features []Series, weights []float64, addIntercept bool) (*design, *CoefficientSequence, []float64, error) {
	d, err := newDesign(target, features, weights, addIntercept, r.opt.NullPolicy)
	if err != nil {
		return nil, nil, nil, err
	}
	if r.opt.InitialStateMean != nil && len(r.opt.InitialStateMean) != d.k {
		return nil, nil, nil, fmt.Errorf("initial state mean has %d values for %d features, %w",
			len(r.opt.InitialStateMean), d.k, ErrInitialStateMeanSize)
	}

	st := newRecursiveState(d.k, r.opt.forgettingFactor(), r.opt.InitialStateCovariance, r.opt.InitialStateMean)
	seq := newCoefficientSequence(d.names, d.n)
	pred := make([]float64, d.n)
	xrow := make([]float64, d.k)

	for t := 0; t < d.n; t++ {
		d.row(t, xrow)

		// causal output: predict with the pre-update state
		pred[t] = st.predict(xrow)

		if d.mask[t] {
			st.update(xrow, d.y[t])
		}
		seq.setRow(t, st.mean)
	}
	return d, seq, pred, nil
}

// recursiveState is the (mean, covariance) bundle of one recursive regression
// call. The covariance stays symmetric positive semi-definite by construction
// since each update subtracts a scaled outer product of P·x with itself.
type recursiveState struct {
	lambda float64
	mean   []float64
	cov    *mat.SymDense
	px     *mat.VecDense // scratch for P·x
}

func newRecursiveState(k int, lambda, initialCov float64, initialMean []float64) *recursiveState {
	mean := make([]float64, k)
	if initialMean != nil {
		copy(mean, initialMean)
	}
	cov := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		cov.SetSym(i, i, initialCov)
	}
	return &recursiveState{
		lambda: lambda,
		mean:   mean,
		cov:    cov,
		px:     mat.NewVecDense(k, nil),
	}
}

func (st *recursiveState) predict(x []float64) float64 {
	return floats.Dot(x, st.mean)
}

func (st *recursiveState) update(x []float64, y float64) {
	k := len(x)
	xv := mat.NewVecDense(k, x)

	st.px.MulVec(st.cov, xv)
	pxData := st.px.RawVector().Data

	// gain K = P·x / (λ + xᵗP·x)
	denom := st.lambda + floats.Dot(x, pxData)

	// m ← m + K (y − xᵗm)
	resid := y - floats.Dot(x, st.mean)
	floats.AddScaled(st.mean, resid/denom, pxData)

	// P ← (P − K xᵗP) / λ, with K xᵗP = (P·x)(P·x)ᵗ / denom
	st.cov.SymRankOne(st.cov, -1.0/denom, st.px)
	if st.lambda != 1.0 {
		st.cov.ScaleSym(1.0/st.lambda, st.cov)
	}
}
