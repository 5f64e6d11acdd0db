package rlcscope_test

import (
	"bytes"
	"testing"

	Rd "github.com/maroda/rlcscope/display"
	Rs "github.com/maroda/rlcscope/server"
	Rt "github.com/maroda/rlcscope/types"
)

func TestSharedRange(t *testing.T) {
	t.Run("Union of all series", func(t *testing.T) {
		series := []Rt.RenderSeries{
			{YAxisMin: -1, YAxisMax: 2},
			{YAxisMin: -3, YAxisMax: 1},
		}
		got := Rd.SharedRange(series)
		assertFloat(t, got.Min, -3)
		assertFloat(t, got.Max, 2)
	})

	t.Run("No series gives a unit range", func(t *testing.T) {
		got := Rd.SharedRange(nil)
		assertFloat(t, got.Min, -1)
		assertFloat(t, got.Max, 1)
	})
}

func TestPlotGrid(t *testing.T) {
	ramp := Rt.RenderSeries{XAxisMax: 10, YAxisMin: 0, YAxisMax: 10}
	for i := 0; i <= 10; i++ {
		ramp.Points = append(ramp.Points, Rt.Point{X: float64(i), Y: float64(i)})
	}
	grid := Rd.PlotGrid([]Rt.RenderSeries{ramp}, 11, 11)

	t.Run("Grid has the asked size", func(t *testing.T) {
		assertInt(t, len(grid), 11)
		assertInt(t, len(grid[0]), 11)
	})

	t.Run("Ramp runs bottom left to top right", func(t *testing.T) {
		assertInt(t, grid[10][0], 0)
		assertInt(t, grid[0][10], 0)
		assertInt(t, grid[5][5], 0)
	})

	t.Run("Cells off the trace are empty", func(t *testing.T) {
		assertInt(t, grid[0][0], -1)
		assertInt(t, grid[10][10], -1)
	})

	t.Run("Later series draw on top", func(t *testing.T) {
		flat := Rt.RenderSeries{
			XAxisMax: 10,
			YAxisMin: 0,
			YAxisMax: 10,
			Points:   []Rt.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		}
		g := Rd.PlotGrid([]Rt.RenderSeries{ramp, flat}, 11, 11)
		assertInt(t, g[10][0], 1)
	})

	t.Run("Zero size is safe", func(t *testing.T) {
		g := Rd.PlotGrid([]Rt.RenderSeries{ramp}, 0, 0)
		assertInt(t, len(g), 0)
	})
}

func TestRenderPNG(t *testing.T) {
	res, err := Rs.Solve(Rt.CircuitParameters{R: 20, L: 0.1, C: 1e-4}, Rs.DefaultSolveOptions())
	assertError(t, err, nil)

	var buf bytes.Buffer
	err = Rd.RenderPNG(res, 300, 200, &buf)
	assertError(t, err, nil)

	t.Run("Writes a PNG", func(t *testing.T) {
		if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
			t.Errorf("output does not start with the PNG signature")
		}
	})
}
