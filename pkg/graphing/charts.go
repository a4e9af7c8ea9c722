package graphing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"GpuVkUsage/pkg/exporting"
)

// createLineChart renders one series as a smoothed line over wall time.
func createLineChart(s *Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: formatName(s.Name)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	)

	xLabels := make([]string, len(s.Timestamps))
	for i, ts := range s.Timestamps {
		xLabels[i] = time.Unix(0, ts).Format("15:04:05.000")
	}
	data := make([]opts.LineData, len(s.Values))
	for i, v := range s.Values {
		data[i] = opts.LineData{Value: v}
	}

	line.SetXAxis(xLabels).AddSeries("", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
	)
	return line
}

// GenerateCharts loads a session file and renders every numeric column
// into a single HTML page under outDir. Returns the page path.
func GenerateCharts(dataPath, outDir string) (string, error) {
	records, err := exporting.LoadRecords(dataPath)
	if err != nil {
		return "", fmt.Errorf("failed to load session data: %w", err)
	}

	series := BuildSeries(records)
	if len(series) == 0 {
		return "", fmt.Errorf("no numeric columns in %s", dataPath)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create graph directory: %w", err)
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	for i := range series {
		page.AddCharts(createLineChart(&series[i]))
	}

	base := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))
	path := filepath.Join(outDir, base+"_charts.html")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if err := page.Render(file); err != nil {
		return "", fmt.Errorf("failed to render charts: %w", err)
	}
	return path, nil
}
