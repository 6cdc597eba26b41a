package plot

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderHTML writes a self-contained interactive page for the spec: one box
// series per group with every point overlaid and labelled by design.
func RenderHTML(spec Spec, w io.Writer) error {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: spec.Title, Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(spec.ShowLegend)}),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.XAxisTitle, NameLocation: "middle", NameGap: 30, Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.YAxisTitle, NameLocation: "middle", NameGap: 45}),
	)
	box.SetXAxis(spec.Categories)

	if spec.Placeholder() {
		return box.Render(w)
	}

	points := charts.NewScatter()
	for _, g := range spec.Groups {
		name := seriesName(spec, g)

		data := make([]opts.BoxPlotData, len(spec.Categories))
		var dots []opts.ScatterData
		for i, c := range spec.Categories {
			b, ok := spec.Box(c, g)
			if !ok {
				data[i] = opts.BoxPlotData{Name: c}
				continue
			}
			st := b.Stats
			data[i] = opts.BoxPlotData{Name: c, Value: []float64{st.LowerFence, st.Q1, st.Median, st.Q3, st.UpperFence}}
			for _, p := range b.Points {
				dots = append(dots, opts.ScatterData{Name: p.Design, Value: []interface{}{c, p.Value}})
			}
		}

		box.AddSeries(name, data)
		points.AddSeries(name, dots, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	}

	box.Overlap(points)
	return box.Render(w)
}

func seriesName(spec Spec, group string) string {
	if group == "" {
		return spec.Entity
	}
	return "Group " + group
}
