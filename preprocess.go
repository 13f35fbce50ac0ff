package leastsquares

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/aouyang1/go-leastsquares/nullpolicy"
	"gonum.org/v1/gonum/floats"
)

// interceptName is the reserved column name for an intercept feature. An
// incoming feature with this name suppresses intercept duplication.
const interceptName = "const"

// design holds the preprocessed inputs of one regression call: the √w scaled
// target and feature columns with the null policy's fill applied, the row
// validity mask, and everything needed to undo the scaling on outputs. All
// state is discarded when the call returns.
type design struct {
	names  []string
	n, k   int
	policy nullpolicy.Policy

	rawY  []float64 // unscaled target for residuals
	sqrtW []float64 // nil when unweighted

	y    []float64   // scaled, policy-filled target
	cols [][]float64 // scaled, policy-filled feature columns
	mask []bool      // rows valid for fitting or state updates
}

func newDesign(target Series, features []Series, weights []float64, addIntercept bool, policy nullpolicy.Policy) (*design, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	n := len(target.Values)
	if n == 0 {
		return nil, ErrNoTarget
	}

	features = appendIntercept(features, n, addIntercept)
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	for _, f := range features {
		if len(f.Values) != n {
			return nil, fmt.Errorf("feature %q has %d rows and target has %d rows, %w", f.Name, len(f.Values), n, ErrTargetLenMismatch)
		}
	}
	if weights != nil && len(weights) != n {
		return nil, fmt.Errorf("weights have %d rows and target has %d rows, %w", len(weights), n, ErrWeightLenMismatch)
	}

	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name
	}

	y := target.Values
	cols := make([][]float64, len(features))
	for j, f := range features {
		cols[j] = f.Values
	}

	var sqrtW []float64
	if weights != nil {
		sqrtW = make([]float64, n)
		for i, w := range weights {
			if w < 0 {
				return nil, fmt.Errorf("weight %f at row %d, %w", w, i, ErrNegativeWeight)
			}
			sqrtW[i] = math.Sqrt(w)
		}

		// scale the target and every feature column by √w exactly once so
		// every downstream xxᵗ accumulation carries w once
		sy := make([]float64, n)
		floats.MulTo(sy, y, sqrtW)
		y = sy
		for j := range cols {
			sc := make([]float64, n)
			floats.MulTo(sc, cols[j], sqrtW)
			cols[j] = sc
		}
	}

	fy, fcols, mask, err := nullpolicy.ApplyStream(policy, y, cols)
	if err != nil {
		return nil, err
	}

	return &design{
		names:  names,
		n:      n,
		k:      len(cols),
		policy: policy,
		rawY:   target.Values,
		sqrtW:  sqrtW,
		y:      fy,
		cols:   fcols,
		mask:   mask,
	}, nil
}

func appendIntercept(features []Series, n int, addIntercept bool) []Series {
	if !addIntercept {
		return features
	}
	for _, f := range features {
		if f.Name == interceptName {
			slog.Info("feature named 'const' already detected, assuming it is an intercept")
			return features
		}
	}
	ones := make([]float64, n)
	floats.AddConst(1.0, ones)
	out := make([]Series, len(features), len(features)+1)
	copy(out, features)
	return append(out, Series{Name: interceptName, Values: ones})
}

// fitRows returns the target and feature columns reduced to rows valid for
// fitting. Weights are already folded into the scaled columns.
func (d *design) fitRows() ([]float64, [][]float64) {
	y, cols, _ := nullpolicy.ReduceRows(d.mask, d.y, d.cols, nil)
	return y, cols
}

// row copies row t of the feature columns into dst.
func (d *design) row(t int, dst []float64) {
	for j := range d.cols {
		dst[j] = d.cols[j][t]
	}
}

// finish converts raw scaled-axis model output into predictions: it undoes
// the √w scaling and nulls out rows the policy excludes from output.
func (d *design) finish(pred []float64) []float64 {
	if d.sqrtW != nil {
		floats.Div(pred, d.sqrtW)
	}
	if d.policy == nullpolicy.Drop {
		for i, m := range d.mask {
			if !m {
				pred[i] = math.NaN()
			}
		}
	}
	return pred
}

// residuals computes target minus predictions on the unscaled axis.
func (d *design) residuals(pred []float64) []float64 {
	res := make([]float64, d.n)
	floats.SubTo(res, d.rawY, pred)
	return res
}
