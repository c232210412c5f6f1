package main

import (
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// durationBucket width of the match duration histogram bars, seconds
const durationBucket = 15

func chartMatches(logFile, outFile string) error {
	reasons := map[string]int{}
	kinds := map[string]int{}
	buckets := map[int64]int{}

	err := scanLog(logFile, "match ended", func(ev *LogEntity) {
		reasons[ev.Reason]++
		switch {
		case ev.AI:
			kinds["ai"]++
		case ev.Private:
			kinds["private"]++
		default:
			kinds["queue"]++
		}
		if ev.Winner == "" {
			kinds["draw"]++
		}
		buckets[ev.Duration/1000/durationBucket]++
	})
	if err != nil {
		return err
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	axis := make([]int64, 0, len(keys))
	counts := make([]opts.BarData, 0, len(keys))
	for _, k := range keys {
		axis = append(axis, k*durationBucket)
		counts = append(counts, opts.BarData{Value: buckets[k]})
	}

	durations := charts.NewBar()
	durations.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Match duration",
			Subtitle: "seconds",
		}),
	)
	durations.SetXAxis(axis).AddSeries("matches", counts)

	fo, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer fo.Close()

	page := components.NewPage()
	page.PageTitle = "Matches"
	page.AddCharts(durations, pie("End reason", reasons), pie("Match kind", kinds))

	return page.Render(fo)
}

func pie(title string, values map[string]int) *charts.Pie {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]opts.PieData, 0, len(names))
	for _, name := range names {
		items = append(items, opts.PieData{Name: name, Value: values[name]})
	}

	p := charts.NewPie()
	p.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)
	p.AddSeries(title, items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: true, Formatter: "{b}: {c}"}))

	return p
}
