package main

import (
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

func chartTick(logFile, outFile string) error {
	times := make([]time.Time, 0, initialEventsCount)
	duration := make([]opts.LineData, 0, initialEventsCount)
	sessions := make([]opts.LineData, 0, initialEventsCount)
	connections := make([]opts.LineData, 0, initialEventsCount)
	queue := make([]opts.LineData, 0, initialEventsCount)

	err := scanLog(logFile, "tick", func(ev *LogEntity) {
		t, err := strToDateTime(ev.Time)
		if err != nil {
			zlog.Error().Err(err).Str("time", ev.Time).Msg("failed to parse time from log line")
			return
		}
		times = append(times, t)

		duration = append(duration, opts.LineData{Value: float64(ev.DurationUs) / 1000})
		sessions = append(sessions, opts.LineData{Value: ev.Sessions})
		connections = append(connections, opts.LineData{Value: ev.Connections})
		queue = append(queue, opts.LineData{Value: ev.Queue})
	})
	if err != nil {
		return err
	}

	load := charts.NewLine()
	load.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Tick duration, ms",
		}),
	)
	load.SetXAxis(times).
		AddSeries("duration", duration).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: true}))

	population := charts.NewLine()
	population.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Connections, queue & matches",
		}),
	)
	population.SetXAxis(times).
		AddSeries("connections", connections).
		AddSeries("queue", queue).
		AddSeries("matches", sessions).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Step: true}))

	fo, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer fo.Close()

	page := components.NewPage()
	page.PageTitle = "Engine ticks"
	page.AddCharts(load, population)

	return page.Render(fo)
}
