package rlcscope

import (
	"math"

	"github.com/gdamore/tcell/v2"
	Rt "github.com/maroda/rlcscope/types"
)

const emptyCell = -1

// SharedRange is the union of every series' y range, so all traces share one axis
func SharedRange(series []Rt.RenderSeries) Rt.AxisRange {
	if len(series) == 0 {
		return Rt.AxisRange{Min: -1, Max: 1}
	}
	yr := Rt.AxisRange{Min: series[0].YAxisMin, Max: series[0].YAxisMax}
	for _, s := range series[1:] {
		yr.Min = math.Min(yr.Min, s.YAxisMin)
		yr.Max = math.Max(yr.Max, s.YAxisMax)
	}
	return yr
}

// PlotGrid rasterises the series into rows x cols cells.
// Each cell holds the index of the series drawn there, or -1.
// Row 0 is the top of the plot, later series draw over earlier ones.
func PlotGrid(series []Rt.RenderSeries, cols, rows int) [][]int {
	grid := make([][]int, rows)
	for r := range grid {
		grid[r] = make([]int, cols)
		for c := range grid[r] {
			grid[r][c] = emptyCell
		}
	}
	if cols < 1 || rows < 1 {
		return grid
	}

	yr := SharedRange(series)
	for si, s := range series {
		if s.XAxisMax <= 0 {
			continue
		}
		prevCol, prevRow := -1, -1
		for _, p := range s.Points {
			col := scaleTo(p.X, 0, s.XAxisMax, cols)
			row := rows - 1 - scaleTo(p.Y, yr.Min, yr.Max, rows)

			// fill the vertical gap of steep edges
			if prevCol >= 0 && col != prevCol {
				lo, hi := min(prevRow, row), max(prevRow, row)
				for r := lo; r <= hi; r++ {
					grid[r][col] = si
				}
			}
			grid[row][col] = si
			prevCol, prevRow = col, row
		}
	}
	return grid
}

// scaleTo maps v in [lo, hi] onto a cell index in [0, n)
func scaleTo(v, lo, hi float64, n int) int {
	if hi <= lo {
		return 0
	}
	i := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	return max(0, min(n-1, i))
}

// SeriesStyle turns a "#rrggbb" series colour into a tcell style
func SeriesStyle(hex string) tcell.Style {
	return tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.GetColor(hex))
}
