// Package nullpolicy implements the row filtering and filling strategies
// applied to regression inputs before any fitting takes place. Nulls are
// represented as NaN in float64 columns.
package nullpolicy

import (
	"errors"
	"fmt"
	"math"
)

var ErrUnknownPolicy = errors.New("unknown null policy")

// Policy determines how null targets and features are treated during fitting
// and prediction.
type Policy string

const (
	// Zero fills null targets and features with 0.0. No rows are dropped.
	Zero Policy = "zero"

	// Drop excludes rows with any null target or feature from fitting.
	// Predictions for those rows are null.
	Drop Policy = "drop"

	// Ignore performs no handling. The caller guarantees there are no nulls
	// and any that slip through propagate as NaN through the arithmetic.
	Ignore Policy = "ignore"

	// DropZero excludes rows with nulls from fitting, but zero fills null
	// features when producing predictions, allowing extrapolation over rows
	// that were not fit.
	DropZero Policy = "drop_zero"

	// DropYZeroX excludes only rows with a null target from fitting and zero
	// fills null features everywhere.
	DropYZeroX Policy = "drop_y_zero_x"
)

// Parse converts a policy tag to a Policy, rejecting unrecognized tags.
func Parse(s string) (Policy, error) {
	p := Policy(s)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate checks that the policy is one of the recognized tags. An empty
// policy defaults to Ignore and is valid.
func (p Policy) Validate() error {
	switch p {
	case Zero, Drop, Ignore, DropZero, DropYZeroX, "":
		return nil
	}
	return fmt.Errorf("%q, %w", string(p), ErrUnknownPolicy)
}

// ApplyStream returns full length copies of the target and feature columns
// with the policy's fill applied, along with a row validity mask. Rows where
// the mask is false must be excluded from fitting. The returned feature
// columns are the ones to use when producing predictions over all rows.
func ApplyStream(p Policy, y []float64, x [][]float64) ([]float64, [][]float64, []bool, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, nil, err
	}

	n := len(y)
	mask := make([]bool, n)

	switch p {
	case Zero:
		for i := range mask {
			mask[i] = true
		}
		return zeroFill(y), zeroFillCols(x), mask, nil
	case Ignore, "":
		for i := range mask {
			mask[i] = true
		}
		return y, x, mask, nil
	case Drop:
		for i := 0; i < n; i++ {
			mask[i] = rowValid(i, y, x)
		}
		return y, x, mask, nil
	case DropZero:
		for i := 0; i < n; i++ {
			mask[i] = rowValid(i, y, x)
		}
		return y, zeroFillCols(x), mask, nil
	case DropYZeroX:
		for i := 0; i < n; i++ {
			mask[i] = !math.IsNaN(y[i])
		}
		return y, zeroFillCols(x), mask, nil
	}
	return nil, nil, nil, fmt.Errorf("%q, %w", string(p), ErrUnknownPolicy)
}

// Apply returns row-reduced copies of the target, feature columns and weights
// containing only the rows valid for fitting, plus the validity mask for
// re-inserting nulls into outputs.
func Apply(p Policy, y []float64, x [][]float64, w []float64) ([]float64, [][]float64, []float64, []bool, error) {
	fy, fx, mask, err := ApplyStream(p, y, x)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ry, rx, rw := ReduceRows(mask, fy, fx, w)
	return ry, rx, rw, mask, nil
}

// ReduceRows copies the target, feature columns and optional weights down to
// the rows where the mask is true. The inputs are returned untouched when
// every row is kept.
func ReduceRows(mask []bool, y []float64, x [][]float64, w []float64) ([]float64, [][]float64, []float64) {
	kept := 0
	for _, m := range mask {
		if m {
			kept++
		}
	}
	if kept == len(mask) {
		return y, x, w
	}

	ry := make([]float64, 0, kept)
	rx := make([][]float64, len(x))
	for j := range rx {
		rx[j] = make([]float64, 0, kept)
	}
	var rw []float64
	if w != nil {
		rw = make([]float64, 0, kept)
	}
	for i, m := range mask {
		if !m {
			continue
		}
		ry = append(ry, y[i])
		for j := range x {
			rx[j] = append(rx[j], x[j][i])
		}
		if w != nil {
			rw = append(rw, w[i])
		}
	}
	return ry, rx, rw
}

// FillFeatures applies the policy's prediction-time fill to feature columns
// only. Coefficients are assumed already valid.
func FillFeatures(p Policy, x [][]float64) ([][]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p {
	case Zero, DropZero, DropYZeroX:
		return zeroFillCols(x), nil
	default:
		return x, nil
	}
}

// MaskRows marks output rows that must be null under the policy given feature
// columns. Only Drop masks rows; every other policy predicts all rows.
func MaskRows(p Policy, x [][]float64) []bool {
	var n int
	if len(x) > 0 {
		n = len(x[0])
	}
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		if p == Drop {
			mask[i] = colsValid(i, x)
			continue
		}
		mask[i] = true
	}
	return mask
}

func rowValid(i int, y []float64, x [][]float64) bool {
	if math.IsNaN(y[i]) {
		return false
	}
	return colsValid(i, x)
}

func colsValid(i int, x [][]float64) bool {
	for j := range x {
		if math.IsNaN(x[j][i]) {
			return false
		}
	}
	return true
}

func zeroFill(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		out[i] = v
	}
	return out
}

func zeroFillCols(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for j := range x {
		out[j] = zeroFill(x[j])
	}
	return out
}
