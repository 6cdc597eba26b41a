package plot

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	imageWidth  = 10 * vg.Inch
	imageHeight = 6 * vg.Inch
)

var palette = []color.Color{
	color.RGBA{R: 0x63, G: 0x6e, B: 0xfa, A: 0xff},
	color.RGBA{R: 0xef, G: 0x55, B: 0x3b, A: 0xff},
	color.RGBA{R: 0x00, G: 0xcc, B: 0x96, A: 0xff},
	color.RGBA{R: 0xab, G: 0x63, B: 0xfa, A: 0xff},
	color.RGBA{R: 0xff, G: 0xa1, B: 0x5a, A: 0xff},
	color.RGBA{R: 0x19, G: 0xd3, B: 0xf3, A: 0xff},
}

// newImagePlot lays boxes out side by side within each size category
func newImagePlot(spec Spec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XAxisTitle
	p.Y.Label.Text = spec.YAxisTitle
	if spec.Placeholder() {
		return p, nil
	}

	p.NominalX(spec.Categories...)
	slot := 0.8 / float64(len(spec.Groups))
	width := vg.Points(60 / float64(len(spec.Groups)))

	for gi, g := range spec.Groups {
		c := palette[gi%len(palette)]
		for ci, cat := range spec.Categories {
			b, ok := spec.Box(cat, g)
			if !ok {
				continue
			}
			x := float64(ci) - 0.4 + slot*(float64(gi)+0.5)

			values := make(plotter.Values, len(b.Points))
			xys := make(plotter.XYs, len(b.Points))
			for i, pt := range b.Points {
				values[i] = pt.Value
				xys[i] = plotter.XY{X: x, Y: pt.Value}
			}

			bp, err := plotter.NewBoxPlot(width, x, values)
			if err != nil {
				return nil, fmt.Errorf("box %s/%s: %w", cat, g, err)
			}
			bp.BoxStyle.Color = c
			sc, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, fmt.Errorf("points %s/%s: %w", cat, g, err)
			}
			sc.GlyphStyle.Color = c
			sc.GlyphStyle.Radius = vg.Points(2)
			p.Add(bp, sc)

			if ci == 0 && spec.ShowLegend {
				p.Legend.Add(seriesName(spec, g), sc)
			}
		}
	}
	return p, nil
}

// RenderImage writes the plot in the given format ("png", "svg", "pdf")
func RenderImage(spec Spec, w io.Writer, format string) error {
	p, err := newImagePlot(spec)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(imageWidth, imageHeight, format)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveImage writes the plot to a file; the format follows the extension
func SaveImage(spec Spec, path string) error {
	p, err := newImagePlot(spec)
	if err != nil {
		return err
	}
	return p.Save(imageWidth, imageHeight, path)
}
