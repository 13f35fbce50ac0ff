package leastsquares

import (
	"bytes"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// Coefficients is a fitted coefficient vector aligned positionally with the
// feature columns it was fit against. Each element is named after its source
// feature.
type Coefficients struct {
	names  []string
	values []float64
	idx    map[string]int
}

// NewCoefficients pairs coefficient values with their feature names.
func NewCoefficients(names []string, values []float64) (*Coefficients, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("%d names for %d values, %w", len(names), len(values), ErrCoefLenMismatch)
	}
	idx := make(map[string]int, len(names))
	for i, name := range names {
		if _, exists := idx[name]; exists {
			return nil, fmt.Errorf("feature %q appears more than once, %w", name, ErrDuplicateFeature)
		}
		idx[name] = i
	}
	return &Coefficients{
		names:  names,
		values: values,
		idx:    idx,
	}, nil
}

func (c *Coefficients) Len() int {
	return len(c.values)
}

// Names returns the feature names in coefficient order.
func (c *Coefficients) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Values returns the coefficient values in feature order.
func (c *Coefficients) Values() []float64 {
	values := make([]float64, len(c.values))
	copy(values, c.values)
	return values
}

// Value looks up one coefficient by its feature name.
func (c *Coefficients) Value(name string) (float64, bool) {
	i, exists := c.idx[name]
	if !exists {
		return 0, false
	}
	return c.values[i], true
}

// MarshalJSON encodes the coefficients as an object of named values
// preserving feature order.
func (c *Coefficients) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(c.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CoefficientSequence is one coefficient vector per input row, produced by
// the recursive and rolling regressors whose state evolves with each
// observation. Rows are stored in one contiguous n×k buffer.
type CoefficientSequence struct {
	names []string
	k     int
	data  []float64
}

func newCoefficientSequence(names []string, n int) *CoefficientSequence {
	k := len(names)
	data := make([]float64, n*k)
	for i := range data {
		data[i] = math.NaN()
	}
	return &CoefficientSequence{
		names: names,
		k:     k,
		data:  data,
	}
}

// Len returns the number of rows in the sequence.
func (s *CoefficientSequence) Len() int {
	if s.k == 0 {
		return 0
	}
	return len(s.data) / s.k
}

// Names returns the feature names in coefficient order.
func (s *CoefficientSequence) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Row returns the coefficient vector of row i. The returned slice is a view
// into the sequence buffer.
func (s *CoefficientSequence) Row(i int) []float64 {
	return s.data[i*s.k : (i+1)*s.k]
}

func (s *CoefficientSequence) setRow(i int, vals []float64) {
	copy(s.data[i*s.k:(i+1)*s.k], vals)
}

// Col returns the per-row values of the named coefficient.
func (s *CoefficientSequence) Col(name string) ([]float64, bool) {
	j := -1
	for i, n := range s.names {
		if n == name {
			j = i
			break
		}
	}
	if j < 0 {
		return nil, false
	}
	n := s.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = s.data[i*s.k+j]
	}
	return out, true
}
