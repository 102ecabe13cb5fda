package lane

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var sideColors = map[Side]color.RGBA{
	Left:  {R: 0, G: 0, B: 255, A: 255},
	Right: {R: 255, G: 0, B: 0, A: 255},
}

// PlotBoundaries renders the tracked boundaries as a PNG chart in the
// coordinates of a width×height occupancy image. The Y axis is inverted so
// the chart reads like the image.
func PlotBoundaries(b *Boundaries, width, height int, w io.Writer) error {
	p := plot.New()
	p.Title.Text = "Lane boundaries"
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.X.Min, p.X.Max = 0, float64(width)
	p.Y.Min, p.Y.Max = 0, float64(height)
	p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}
	p.Add(plotter.NewGrid())

	for _, side := range []Side{Left, Right} {
		pts := b.Side(side)
		if len(pts) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(pts))
		for i, pt := range pts {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("failed to build %s series: %w", side, err)
		}
		line.Color = sideColors[side]
		line.Width = vg.Points(1.5)
		scatter.Color = sideColors[side]
		p.Add(line, scatter)
		p.Legend.Add(side.String(), line, scatter)
	}

	wt, err := p.WriterTo(6*vg.Inch, 4.5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}
