package leastsquares

import (
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineSeries generates an echart multi-line chart for some arbitrary set of
// row-aligned series, such as a target next to its fitted predictions. NaN
// rows produced by null policies are skipped.
func LineSeries(title string, seriesName []string, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	var n int
	if len(y) > 0 {
		n = len(y[0])
	}
	xAxis := make([]int, 0, n)
	for i := 0; i < n; i++ {
		xAxis = append(xAxis, i)
	}

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				lineData[i] = append(lineData[i], opts.LineData{})
				continue
			}
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(xAxis)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}

	return line
}
