package leastsquares

import (
	"math"
	"testing"

	"github.com/aouyang1/go-leastsquares/nullpolicy"
	"github.com/aouyang1/go-leastsquares/solvers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// y = 1 + 2*x with a small deterministic wobble so window fits differ
func rollingSystem(n int) (Series, []Series) {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		y[i] = 1.0 + 2.0*x[i] + 0.1*float64(i%3-1)
	}
	return NewSeries("y", y), []Series{NewSeries("x", x)}
}

func TestRollingWindowMean(t *testing.T) {
	// a single constant feature reduces the window fit to the window mean
	target := NewSeries("y", []float64{1, 1, 1, 4, 4, 4})
	features := []Series{NewSeries("level", []float64{1, 1, 1, 1, 1, 1})}

	reg, err := NewRollingRegressor(&RollingOptions{WindowSize: 3})
	require.Nil(t, err)

	seq, err := reg.FitCoefficients(target, features, nil, false)
	require.Nil(t, err)

	level, exists := seq.Col("level")
	require.True(t, exists)
	assert.InDeltaSlice(t, []float64{1, 1, 1, 2, 3, 4}, level, 1e-10)

	pred, err := reg.FitPredictions(target, features, nil, false)
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{1, 1, 1, 2, 3, 4}, pred, 1e-10)
}

func TestRollingMatchesPerWindowFit(t *testing.T) {
	n := 12
	window := 5
	target, features := rollingSystem(n)

	reg, err := NewRollingRegressor(&RollingOptions{WindowSize: window, MinPeriods: window})
	require.Nil(t, err)

	seq, err := reg.FitCoefficients(target, features, nil, true)
	require.Nil(t, err)

	static, err := NewStaticRegressor(&OLSOptions{SolveMethod: solvers.MethodChol})
	require.Nil(t, err)

	for i := 0; i < window-1; i++ {
		for _, v := range seq.Row(i) {
			assert.True(t, math.IsNaN(v), "row %d", i)
		}
	}
	for i := window - 1; i < n; i++ {
		wt := NewSeries("y", target.Values[i-window+1:i+1])
		wf := []Series{NewSeries("x", features[0].Values[i-window+1 : i+1])}
		coefs, err := static.FitCoefficients(wt, wf, nil, true)
		require.Nil(t, err)
		assert.InDeltaSlice(t, coefs.Values(), seq.Row(i), 1e-8, "row %d", i)
	}
}

func TestRollingWoodburyAgreement(t *testing.T) {
	n := 30
	target, features := rollingSystem(n)

	woodbury := true
	direct := false

	wreg, err := NewRollingRegressor(&RollingOptions{WindowSize: 6, UseWoodbury: &woodbury})
	require.Nil(t, err)
	dreg, err := NewRollingRegressor(&RollingOptions{WindowSize: 6, UseWoodbury: &direct})
	require.Nil(t, err)

	wseq, err := wreg.FitCoefficients(target, features, nil, true)
	require.Nil(t, err)
	dseq, err := dreg.FitCoefficients(target, features, nil, true)
	require.Nil(t, err)

	for i := 0; i < n; i++ {
		wrow := wseq.Row(i)
		drow := dseq.Row(i)
		for j := range wrow {
			if math.IsNaN(drow[j]) {
				assert.True(t, math.IsNaN(wrow[j]), "row %d", i)
				continue
			}
			assert.InDelta(t, drow[j], wrow[j], 1e-8, "row %d", i)
		}
	}
}

func TestRollingExpandingWindow(t *testing.T) {
	// a window covering the full input reproduces the batch fit on the
	// final row
	n := 12
	target, features := rollingSystem(n)

	reg, err := NewRollingRegressor(&RollingOptions{WindowSize: n})
	require.Nil(t, err)

	seq, err := reg.FitCoefficients(target, features, nil, true)
	require.Nil(t, err)

	static, err := NewStaticRegressor(&OLSOptions{SolveMethod: solvers.MethodChol})
	require.Nil(t, err)
	coefs, err := static.FitCoefficients(target, features, nil, true)
	require.Nil(t, err)

	assert.InDeltaSlice(t, coefs.Values(), seq.Row(n-1), 1e-8)
}

func TestRollingMatchesRecursiveExpanding(t *testing.T) {
	// a window covering the full input is an expanding window, which the
	// recursive regressor reproduces row for row once its prior is weak
	// enough to be negligible
	n := 40
	target, features := rollingSystem(n)

	rolling, err := NewRollingRegressor(&RollingOptions{WindowSize: n})
	require.Nil(t, err)
	recursive, err := NewRecursiveRegressor(&RLSOptions{InitialStateCovariance: 1e12})
	require.Nil(t, err)

	rollSeq, err := rolling.FitCoefficients(target, features, nil, true)
	require.Nil(t, err)
	recSeq, err := recursive.FitCoefficients(target, features, nil, true)
	require.Nil(t, err)

	for i := 2; i < n; i++ {
		assert.InDeltaSlice(t, recSeq.Row(i), rollSeq.Row(i), 1e-4, "row %d", i)
	}
}

func TestRollingRidgePenalty(t *testing.T) {
	// perfectly collinear features are solvable once the window statistics
	// carry a ridge penalty
	target := NewSeries("y", []float64{2, 4, 6, 8})
	features := []Series{
		NewSeries("x0", []float64{1, 2, 3, 4}),
		NewSeries("x1", []float64{2, 4, 6, 8}),
	}

	reg, err := NewRollingRegressor(&RollingOptions{WindowSize: 4, MinPeriods: 2, Alpha: 0.1})
	require.Nil(t, err)

	seq, err := reg.FitCoefficients(target, features, nil, false)
	require.Nil(t, err)

	// the shrunk solution still reproduces the target closely
	row := seq.Row(3)
	for i := 0; i < 4; i++ {
		got := row[0]*features[0].Values[i] + row[1]*features[1].Values[i]
		assert.InDelta(t, target.Values[i], got, 0.05)
	}
}

func TestRollingNullRowsSkipWindow(t *testing.T) {
	target := NewSeries("y", []float64{1, 1, math.NaN(), 4, 4, 4})
	features := []Series{NewSeries("level", []float64{1, 1, 1, 1, 1, 1})}

	reg, err := NewRollingRegressor(&RollingOptions{WindowSize: 3, NullPolicy: nullpolicy.Drop})
	require.Nil(t, err)

	seq, err := reg.FitCoefficients(target, features, nil, false)
	require.Nil(t, err)

	// the null row never enters the window; its coefficient row carries
	// the previous window's fit
	level, exists := seq.Col("level")
	require.True(t, exists)
	assert.InDeltaSlice(t, []float64{1, 1, 1, 2, 3, 4}, level, 1e-10)

	pred, err := reg.FitPredictions(target, features, nil, false)
	require.Nil(t, err)
	assertFloatSliceEqualWithNaN(t, []float64{1, 1, math.NaN(), 2, 3, 4}, pred)
}
