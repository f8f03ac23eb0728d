// Package visual renders observations and confidence bands as charts.
package visual

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/Lepecin/dlm-dissertation/score"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type Figure struct {
	plot   *plot.Plot
	series int
}

func NewFigure(title, xLabel, yLabel string) *Figure {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return &Figure{plot: p}
}

func (f *Figure) next() color.Color {
	c := plotutil.Color(f.series)
	f.series++
	return c
}

// AddObservations draws values as points, the first at time start. Missing
// values are skipped.
func (f *Figure) AddObservations(name string, values []float64, start int) error {
	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(start + i), Y: v})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no values to draw for %q", name)
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = f.next()
	scatter.GlyphStyle.Radius = vg.Points(2)
	f.plot.Add(scatter)
	f.plot.Legend.Add(name, scatter)
	return nil
}

// AddBand draws the values of b as a line over a shaded interval.
func (f *Figure) AddBand(name string, b *score.Band) error {
	if len(b.Times) == 0 {
		return fmt.Errorf("empty band %q", name)
	}
	lower, upper := b.Lower(), b.Upper()
	line := make(plotter.XYs, len(b.Times))
	area := make(plotter.XYs, 0, 2*len(b.Times))
	for i, time := range b.Times {
		line[i] = plotter.XY{X: float64(time), Y: b.Values[i]}
		area = append(area, plotter.XY{X: float64(time), Y: lower[i]})
	}
	for i := len(b.Times) - 1; i >= 0; i-- {
		area = append(area, plotter.XY{X: float64(b.Times[i]), Y: upper[i]})
	}

	c := f.next()
	polygon, err := plotter.NewPolygon(area)
	if err != nil {
		return err
	}
	r, g, bl, _ := c.RGBA()
	polygon.Color = color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: 64}
	polygon.LineStyle.Width = 0

	l, err := plotter.NewLine(line)
	if err != nil {
		return err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1)

	f.plot.Add(polygon, l)
	f.plot.Legend.Add(name, l, polygon)
	return nil
}

// Save writes the figure to path; the format follows the file extension.
func (f *Figure) Save(width, height vg.Length, path string) error {
	return f.plot.Save(width, height, path)
}

// WriteTo renders the figure in the given format ("png", "svg", ...) to w.
func (f *Figure) WriteTo(w io.Writer, width, height vg.Length, format string) error {
	writer, err := f.plot.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = writer.WriteTo(w)
	return err
}
