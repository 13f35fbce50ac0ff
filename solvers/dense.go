package solvers

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrRowMismatch = errors.New("row size mismatch")

// parallelRowThreshold is the number of rows above which the sufficient
// statistic accumulation is split across row chunks.
const parallelRowThreshold = 16384

// NewDenseFromColumns builds a row-major dense matrix from column slices. All
// columns must have the same length.
func NewDenseFromColumns(cols [][]float64) (*mat.Dense, error) {
	k := len(cols)

	n := -1
	for j, col := range cols {
		if n >= 0 && len(col) != n {
			return nil, fmt.Errorf("at column %d, %w", j, ErrRowMismatch)
		}
		if n < 0 {
			n = len(col)
		}
	}
	if n < 0 {
		n = 0
	}

	data := make([]float64, n*k)
	for j, col := range cols {
		for i, v := range col {
			data[i*k+j] = v
		}
	}
	return mat.NewDense(n, k, data), nil
}

// NormalEquations accumulates XᵗX and Xᵗy from feature columns. Row order
// does not matter for the sums, so large inputs are reduced in parallel row
// chunks and combined with associative addition.
func NormalEquations(cols [][]float64, y []float64) (*mat.SymDense, []float64) {
	k := len(cols)
	n := len(y)

	workers := 1
	if n >= parallelRowThreshold {
		workers = runtime.GOMAXPROCS(0)
		if chunks := n / parallelRowThreshold; workers > chunks {
			workers = chunks
		}
	}

	// packed upper triangle of XᵗX followed by Xᵗy per worker
	acc := make([][]float64, workers)
	var wg sync.WaitGroup
	for wi := 0; wi < workers; wi++ {
		wg.Add(1)
		lo := wi * n / workers
		hi := (wi + 1) * n / workers
		local := make([]float64, k*(k+1)/2+k)
		acc[wi] = local

		go func() {
			defer wg.Done()
			accumulateRows(local, cols, y, lo, hi)
		}()
	}
	wg.Wait()

	total := acc[0]
	for _, local := range acc[1:] {
		floats.Add(total, local)
	}

	xtx := mat.NewSymDense(k, nil)
	idx := 0
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			xtx.SetSym(i, j, total[idx])
			idx++
		}
	}
	return xtx, total[idx:]
}

func accumulateRows(dst []float64, cols [][]float64, y []float64, lo, hi int) {
	k := len(cols)
	for t := lo; t < hi; t++ {
		idx := 0
		for i := 0; i < k; i++ {
			ci := cols[i][t]
			for j := i; j < k; j++ {
				dst[idx] += ci * cols[j][t]
				idx++
			}
		}
		for i := 0; i < k; i++ {
			dst[idx+i] += cols[i][t] * y[t]
		}
	}
}
