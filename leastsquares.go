// Package leastsquares computes least squares coefficients, predictions, and
// residuals over tabular numeric data. Three regimes are supported: static
// one-shot regression with optional L1/L2 regularization and non-negativity
// constraints, recursive single-pass regression with exponential forgetting,
// and rolling-window regression with incremental update and downdate of the
// window's sufficient statistics.
//
// Inputs are pre-typed float64 columns. Nulls are represented as NaN and
// handled according to a nullpolicy.Policy before any solve.
package leastsquares

// Series is a named float64 column. Coefficients returned from a fit carry
// the name of the feature series they were fit against.
type Series struct {
	Name   string
	Values []float64
}

// NewSeries returns a named column over the given values. The values are not
// copied.
func NewSeries(name string, values []float64) Series {
	return Series{Name: name, Values: values}
}
