// Package chart renders bar chart descriptions to PNG images with gonum/plot.
package chart

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/oil-spill-dashboard/internal/view"
)

// barColor is the fill used for every bar.
var barColor = view.RGBA{31, 119, 180, 255}

// WritePNG draws c and writes it to w as a PNG image.
func WritePNG(w io.Writer, c view.BarChart) error {
	p, err := newPlot(c)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(inches(c.Width, 10), inches(c.Height, 6), "png")
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

func newPlot(c view.BarChart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Y.Min = 0

	values := make(plotter.Values, len(c.Bars))
	labels := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		values[i] = float64(b.Count)
		labels[i] = b.Label
	}
	if len(values) == 0 {
		return p, nil
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = barColor.NRGBA()
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.Add(plotter.NewGrid())

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = c.LabelRotation * math.Pi / 180
	if c.LabelRotation != 0 {
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	return p, nil
}

func inches(v, fallback float64) vg.Length {
	if v <= 0 {
		v = fallback
	}
	return vg.Length(v) * vg.Inch
}
