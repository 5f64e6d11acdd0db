package rlcscope

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	Rs "github.com/maroda/rlcscope/server"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	DefaultPlotWidth  = 900 // pixels
	DefaultPlotHeight = 500
	plotDPI           = 96
)

// RenderPNG draws every series of a result as a coloured line,
// titled with the status line, and writes the PNG to w.
func RenderPNG(res *Rs.Result, width, height int, w io.Writer) error {
	p := plot.New()
	p.Title.Text = res.Status
	p.X.Label.Text = fmt.Sprintf("t (%s)", res.TimeBase.UnitLabel)
	p.Y.Label.Text = yLabel(res)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	yr := SharedRange(res.Series)
	p.Y.Min, p.Y.Max = yr.Min, yr.Max
	p.X.Min, p.X.Max = 0, res.TimeBase.Duration*res.TimeBase.UnitScale

	for _, s := range res.Series {
		pts := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			pts[i].X = pt.X
			pts[i].Y = pt.Y
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = hexColor(s.Color)

		p.Add(line)
		p.Legend.Add(s.Name, line)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(pixels(width), pixels(height)),
		vgimg.UseDPI(plotDPI),
	)
	p.Draw(draw.New(c))

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(w); err != nil {
		return fmt.Errorf("could not write png: %w", err)
	}
	return nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / plotDPI
}

func hexColor(hex string) color.Color {
	r, g, b := tcell.GetColor(hex).RGB()
	if r < 0 {
		return color.Black
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

// current is plotted on the same axis as the voltages
func yLabel(res *Rs.Result) string {
	for _, s := range res.Series {
		if strings.HasPrefix(s.Name, "i(") {
			return "u (V), i (A)"
		}
	}
	return "u (V)"
}
