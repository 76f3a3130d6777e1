package viz

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderBarChart builds a grouped bar chart with one bar series per station
// and every date in [start, end] on the X axis. Dates a station has no point
// for are drawn as zero-height bars; the underlying series stays sparse.
func RenderBarChart(series map[string][]Point, start, end time.Time) *charts.Bar {
	var dates []string
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		dates = append(dates, date.Format(time.DateOnly))
	}

	stations := make([]string, 0, len(series))
	for station := range series {
		stations = append(stations, station)
	}
	sort.Strings(stations)

	boolPtr := func(b bool) *bool { return &b }

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "100%",
			Height: "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Data availability",
			Subtitle: fmt.Sprintf("%s to %s",
				start.Format(time.DateOnly), end.Format(time.DateOnly)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: boolPtr(true)}),
		charts.WithLegendOpts(opts.Legend{Show: boolPtr(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Date",
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Coverage",
			Max:  1,
		}),
		charts.WithGridOpts(opts.Grid{
			ContainLabel: boolPtr(true),
			Left:         "3%",
			Right:        "4%",
			Bottom:       "15%",
		}),
	)

	bar.SetXAxis(dates)
	for _, station := range stations {
		byDate := make(map[string]float64, len(series[station]))
		for _, point := range series[station] {
			byDate[point.Date.Format(time.DateOnly)] = point.Coverage
		}
		data := make([]opts.BarData, 0, len(dates))
		for _, date := range dates {
			data = append(data, opts.BarData{Value: byDate[date]})
		}
		bar.AddSeries(station, data)
	}
	return bar
}

// WriteHTML renders the chart to path, creating parent directories.
func WriteHTML(bar *charts.Bar, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	if err := bar.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}
