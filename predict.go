package leastsquares

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-leastsquares/nullpolicy"
	"gonum.org/v1/gonum/floats"
)

// ApplyCoefficients computes predictions as the row-wise dot product of an
// already fitted coefficient vector with the feature columns. The null policy
// is applied to features only; coefficients are assumed valid. An intercept
// feature of 1.0 is appended when requested and not already present.
func ApplyCoefficients(coefs *Coefficients, features []Series, policy nullpolicy.Policy, addIntercept bool) ([]float64, error) {
	cols, mask, err := predictColumns(features, coefs.Len(), policy, addIntercept)
	if err != nil {
		return nil, err
	}

	n := len(mask)
	pred := make([]float64, n)
	values := coefs.values
	for j, col := range cols {
		floats.AddScaled(pred, values[j], col)
	}
	for i, m := range mask {
		if !m {
			pred[i] = math.NaN()
		}
	}
	return pred, nil
}

// ApplySequence computes predictions from a per-row coefficient sequence,
// dotting each row's coefficients with that row's features.
func ApplySequence(seq *CoefficientSequence, features []Series, policy nullpolicy.Policy, addIntercept bool) ([]float64, error) {
	cols, mask, err := predictColumns(features, seq.k, policy, addIntercept)
	if err != nil {
		return nil, err
	}

	n := len(mask)
	if seq.Len() != n {
		return nil, fmt.Errorf("sequence has %d rows and features have %d rows, %w", seq.Len(), n, ErrSequenceLenMismatch)
	}

	pred := make([]float64, n)
	xrow := make([]float64, seq.k)
	for i := 0; i < n; i++ {
		if !mask[i] {
			pred[i] = math.NaN()
			continue
		}
		for j, col := range cols {
			xrow[j] = col[i]
		}
		pred[i] = floats.Dot(xrow, seq.Row(i))
	}
	return pred, nil
}

func predictColumns(features []Series, k int, policy nullpolicy.Policy, addIntercept bool) ([][]float64, []bool, error) {
	if err := policy.Validate(); err != nil {
		return nil, nil, err
	}
	if len(features) == 0 {
		return nil, nil, ErrNoFeatures
	}

	n := len(features[0].Values)
	features = appendIntercept(features, n, addIntercept)
	for _, f := range features {
		if len(f.Values) != n {
			return nil, nil, fmt.Errorf("feature %q has %d rows, expected %d, %w", f.Name, len(f.Values), n, ErrTargetLenMismatch)
		}
	}
	if len(features) != k {
		return nil, nil, fmt.Errorf("got %d features for %d coefficients, %w", len(features), k, ErrCoefLenMismatch)
	}

	cols := make([][]float64, len(features))
	for j, f := range features {
		cols[j] = f.Values
	}
	filled, err := nullpolicy.FillFeatures(policy, cols)
	if err != nil {
		return nil, nil, err
	}
	return filled, nullpolicy.MaskRows(policy, cols), nil
}
