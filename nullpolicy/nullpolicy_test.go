package nullpolicy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testData := map[string]struct {
		input    string
		err      error
		expected Policy
	}{
		"zero":          {"zero", nil, Zero},
		"drop":          {"drop", nil, Drop},
		"ignore":        {"ignore", nil, Ignore},
		"drop zero":     {"drop_zero", nil, DropZero},
		"drop y zero x": {"drop_y_zero_x", nil, DropYZeroX},
		"unrecognized":  {"interpolate", ErrUnknownPolicy, ""},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			p, err := Parse(td.input)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, p)
		})
	}
}

func TestApplyStream(t *testing.T) {
	nan := math.NaN()
	y := []float64{1, nan, 3, 4}
	x := [][]float64{
		{1, 2, nan, 4},
		{5, 6, 7, 8},
	}

	testData := map[string]struct {
		policy       Policy
		expectedY    []float64
		expectedCol0 []float64
		expectedMask []bool
	}{
		"zero": {
			Zero,
			[]float64{1, 0, 3, 4},
			[]float64{1, 2, 0, 4},
			[]bool{true, true, true, true},
		},
		"drop": {
			Drop,
			y,
			x[0],
			[]bool{true, false, false, true},
		},
		"drop zero": {
			DropZero,
			y,
			[]float64{1, 2, 0, 4},
			[]bool{true, false, false, true},
		},
		"drop y zero x": {
			DropYZeroX,
			y,
			[]float64{1, 2, 0, 4},
			[]bool{true, false, true, true},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			fy, fx, mask, err := ApplyStream(td.policy, y, x)
			require.Nil(t, err)
			assert.Equal(t, td.expectedMask, mask)
			assert.Equal(t, td.expectedCol0, fx[0])
			for i, v := range td.expectedY {
				if math.IsNaN(v) {
					assert.True(t, math.IsNaN(fy[i]))
					continue
				}
				assert.Equal(t, v, fy[i])
			}
		})
	}
}

func TestApplyStreamIgnore(t *testing.T) {
	nan := math.NaN()
	y := []float64{1, nan}
	x := [][]float64{{1, 2}}

	fy, fx, mask, err := ApplyStream(Ignore, y, x)
	require.Nil(t, err)
	assert.Equal(t, []bool{true, true}, mask)

	// ignore passes the inputs through untouched
	assert.True(t, &y[0] == &fy[0])
	assert.True(t, &x[0][0] == &fx[0][0])
}

func TestApply(t *testing.T) {
	nan := math.NaN()
	y := []float64{1, nan, 3, 4}
	x := [][]float64{
		{1, 2, nan, 4},
	}
	w := []float64{1, 2, 3, 4}

	ry, rx, rw, mask, err := Apply(Drop, y, x, w)
	require.Nil(t, err)
	assert.Equal(t, []float64{1, 4}, ry)
	assert.Equal(t, []float64{1, 4}, rx[0])
	assert.Equal(t, []float64{1, 4}, rw)
	assert.Equal(t, []bool{true, false, false, true}, mask)
}

func TestReduceRows(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	x := [][]float64{
		{5, 6, 7, 8},
	}
	w := []float64{1, 2, 3, 4}

	ry, rx, rw := ReduceRows([]bool{true, false, true, false}, y, x, w)
	assert.Equal(t, []float64{1, 3}, ry)
	assert.Equal(t, []float64{5, 7}, rx[0])
	assert.Equal(t, []float64{1, 3}, rw)

	// nil weights stay nil
	_, _, rw = ReduceRows([]bool{true, false, true, false}, y, x, nil)
	assert.Nil(t, rw)

	// a fully true mask passes the inputs through untouched
	fy, fx, fw := ReduceRows([]bool{true, true, true, true}, y, x, w)
	assert.True(t, &y[0] == &fy[0])
	assert.True(t, &x[0][0] == &fx[0][0])
	assert.True(t, &w[0] == &fw[0])
}

func TestApplyUnknownPolicy(t *testing.T) {
	_, _, _, _, err := Apply(Policy("bogus"), []float64{1}, [][]float64{{1}}, nil)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestMaskRows(t *testing.T) {
	nan := math.NaN()
	x := [][]float64{
		{1, nan, 3},
	}

	assert.Equal(t, []bool{true, false, true}, MaskRows(Drop, x))
	assert.Equal(t, []bool{true, true, true}, MaskRows(Zero, x))
	assert.Equal(t, []bool{true, true, true}, MaskRows(Ignore, x))
}

func TestFillFeatures(t *testing.T) {
	nan := math.NaN()
	x := [][]float64{
		{1, nan},
	}

	filled, err := FillFeatures(DropZero, x)
	require.Nil(t, err)
	assert.Equal(t, []float64{1, 0}, filled[0])

	passthrough, err := FillFeatures(Drop, x)
	require.Nil(t, err)
	assert.True(t, math.IsNaN(passthrough[0][1]))
}
