package leastsquares

import (
	"errors"
	"log/slog"
	"math"

	"github.com/aouyang1/go-leastsquares/solvers"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// woodburyFeatureThreshold is the feature count above which maintaining
// (XᵗX)⁻¹ through rank-one updates beats refactorizing every row.
const woodburyFeatureThreshold = 10

// woodburyDenomTol guards the rank-one update and downdate denominators. A
// near-zero denominator signals a near-singular window and triggers a full
// refactorization instead.
const woodburyDenomTol = 1e-12

// RollingRegressor regresses against a sliding window of the most recent
// observations, maintaining the window's XᵗX and Xᵗy incrementally with an
// optional Woodbury identity fast path that avoids an O(k³) refactorization
// per row.
type RollingRegressor struct {
	opt *RollingOptions
}

// NewRollingRegressor initializes a rolling regressor ready for fitting.
func NewRollingRegressor(opt *RollingOptions) (*RollingRegressor, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &RollingRegressor{
		opt: opt,
	}, nil
}

// FitCoefficients streams through all rows and returns one coefficient vector
// per row, each fit on that row's window. Rows before min periods are NaN.
func (r *RollingRegressor) FitCoefficients(target Series, features []Series, weights []float64, addIntercept bool) (*CoefficientSequence, error) {
	_, seq, _, err := r.run(target, features, weights, addIntercept)
	return seq, err
}

// FitPredictions streams through all rows and returns each row's feature
// vector dotted with its own window's coefficients.
func (r *RollingRegressor) FitPredictions(target Series, features []Series, weights []float64, addIntercept bool) ([]float64, error) {
	d, _, pred, err := r.run(target, features, weights, addIntercept)
	if err != nil {
		return nil, err
	}
	return d.finish(pred), nil
}

// FitResiduals streams through all rows and returns target minus predictions.
func (r *RollingRegressor) FitResiduals(target Series, features []Series, weights []float64, addIntercept bool) ([]float64, error) {
	d, _, pred, err := r.run(target, features, weights, addIntercept)
	if err != nil {
		return nil, err
	}
	return d.residuals(d.finish(pred)), nil
}

func (r *RollingRegressor) run(target Series, features []Series, weights []float64, addIntercept bool) (*design, *CoefficientSequence, []float64, error) {
	d, err := newDesign(target, features, weights, addIntercept, r.opt.NullPolicy)
	if err != nil {
		return nil, nil, nil, err
	}

	minPeriods := r.opt.MinPeriods
	if minPeriods == 0 {
		minPeriods = min(d.k, r.opt.WindowSize)
	}
	if minPeriods < d.k || minPeriods > r.opt.WindowSize {
		slog.Warn("min_periods should be at least the number of features and at most the window size, estimates may be unstable",
			"min_periods", minPeriods,
			"features", d.k,
			"window_size", r.opt.WindowSize,
		)
	}

	useWoodbury := d.k > woodburyFeatureThreshold
	if r.opt.UseWoodbury != nil {
		useWoodbury = *r.opt.UseWoodbury
	}

	win := newRollingWindow(d.k, r.opt.WindowSize, r.opt.Alpha, useWoodbury)
	seq := newCoefficientSequence(d.names, d.n)
	pred := make([]float64, d.n)
	xrow := make([]float64, d.k)
	beta := make([]float64, d.k)
	ready := false

	for t := 0; t < d.n; t++ {
		pred[t] = math.NaN()
		if d.mask[t] {
			d.row(t, xrow)
			win.push(xrow, d.y[t])
		}

		if win.count < minPeriods {
			continue
		}
		if d.mask[t] || !ready {
			// re-solve only when the window changed or on first emission
			if err := win.solve(beta); err != nil {
				return nil, nil, nil, err
			}
			ready = true
		}
		seq.setRow(t, beta)

		d.row(t, xrow)
		pred[t] = floats.Dot(xrow, beta)
	}
	return d, seq, pred, nil
}

// rollingWindow holds the FIFO of the most recent rows and the running
// sufficient statistics XᵗX and Xᵗy over them, optionally ridge regularized.
// With the Woodbury path enabled the inverse of XᵗX is propagated directly
// through Sherman-Morrison rank-one updates and downdates; XᵗX itself is kept
// alongside so a near-singular step can fall back to a full refactorization.
type rollingWindow struct {
	k, size int
	count   int

	rows [][]float64 // FIFO ring of row copies
	ys   []float64
	head int

	xtx *mat.SymDense
	xty []float64

	useWoodbury bool
	inv         *mat.Dense
	invReady    bool
	scratch     *mat.VecDense
}

func newRollingWindow(k, size int, alpha float64, useWoodbury bool) *rollingWindow {
	xtx := mat.NewSymDense(k, nil)
	// the ridge penalty enters the window statistics exactly once and is
	// never evicted
	for i := 0; i < k; i++ {
		xtx.SetSym(i, i, alpha)
	}
	rows := make([][]float64, size)
	for i := range rows {
		rows[i] = make([]float64, k)
	}
	return &rollingWindow{
		k:           k,
		size:        size,
		rows:        rows,
		ys:          make([]float64, size),
		xtx:         xtx,
		xty:         make([]float64, k),
		useWoodbury: useWoodbury,
		scratch:     mat.NewVecDense(k, nil),
	}
}

// push adds a row's contribution to the window statistics and evicts the
// oldest row once the window is full.
func (w *rollingWindow) push(x []float64, y float64) {
	if w.count == w.size {
		old := w.rows[w.head]
		oldY := w.ys[w.head]
		w.addRow(old, oldY, -1)
		w.count--
	}

	copy(w.rows[w.head], x)
	w.ys[w.head] = y
	w.head = (w.head + 1) % w.size
	w.count++

	w.addRow(x, y, 1)
}

func (w *rollingWindow) addRow(x []float64, y, sign float64) {
	xv := mat.NewVecDense(w.k, x)
	w.xtx.SymRankOne(w.xtx, sign, xv)
	floats.AddScaled(w.xty, sign*y, x)

	if !w.useWoodbury || !w.invReady {
		return
	}

	// Sherman-Morrison: (A ± xxᵗ)⁻¹ = A⁻¹ ∓ (A⁻¹x)(A⁻¹x)ᵗ / (1 ± xᵗA⁻¹x)
	w.scratch.MulVec(w.inv, xv)
	invX := w.scratch.RawVector().Data
	denom := 1 + sign*floats.Dot(x, invX)
	if math.Abs(denom) < woodburyDenomTol {
		// near-singular window, refactorize on the next solve
		w.invReady = false
		slog.Warn("woodbury denominator near zero, falling back to full refactorization")
		return
	}
	w.inv.RankOne(w.inv, -sign/denom, w.scratch, w.scratch)
}

// solve writes the current window's coefficients into beta.
func (w *rollingWindow) solve(beta []float64) error {
	if w.useWoodbury {
		if !w.invReady {
			if w.inv == nil {
				w.inv = mat.NewDense(w.k, w.k, nil)
			}
			var dense mat.Dense
			dense.CloneFrom(w.xtx)
			if err := w.inv.Inverse(&dense); err != nil {
				var cond mat.Condition
				if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
					// window statistics are singular, solve directly
					return solveNormalInto(beta, w.xtx, w.xty)
				}
			}
			w.invReady = true
		}
		bv := mat.NewVecDense(w.k, w.xty)
		w.scratch.MulVec(w.inv, bv)
		copy(beta, w.scratch.RawVector().Data)
		return nil
	}
	return solveNormalInto(beta, w.xtx, w.xty)
}

func solveNormalInto(beta []float64, xtx *mat.SymDense, xty []float64) error {
	coef, err := solvers.SolveNormal(xtx, xty, 0, true)
	if err != nil {
		return err
	}
	copy(beta, coef)
	return nil
}
