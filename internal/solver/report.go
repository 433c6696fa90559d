package solver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderSegmentReport writes an interactive HTML chart of the per-segment
// peak grid temperature for a run. A horizontal marker at meltTemperature
// (kelvin) shows which segments pushed the pool past melting; pass zero to
// omit it.
func RenderSegmentReport(w io.Writer, result *Result, meltTemperature float64) error {
	if result == nil || len(result.PeakTemperatures) == 0 {
		return fmt.Errorf("no segment temperatures to report")
	}

	x := make([]string, len(result.PeakTemperatures))
	peaks := make([]opts.LineData, len(result.PeakTemperatures))
	for i, v := range result.PeakTemperatures {
		x[i] = fmt.Sprintf("%d", i)
		peaks[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Melt Pool Peak Temperature", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Peak Grid Temperature per Segment", Subtitle: fmt.Sprintf("run=%s segments=%d", result.Name, result.Segments)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Segment", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Temperature (K)", NameLocation: "middle", NameGap: 45, Scale: opts.Bool(true)}),
	)

	series := line.SetXAxis(x).AddSeries("peak temperature", peaks,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false), ShowSymbol: opts.Bool(false)}))
	if meltTemperature > 0 {
		series.SetSeriesOptions(charts.WithMarkLineNameYAxisItemOpts(
			opts.MarkLineNameYAxisItem{Name: "melt temperature", YAxis: meltTemperature}))
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render segment report: %w", err)
	}
	return nil
}

// WriteSegmentReport renders the segment report to a file, creating parent
// directories as needed.
func WriteSegmentReport(path string, result *Result, meltTemperature float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return RenderSegmentReport(f, result, meltTemperature)
}
