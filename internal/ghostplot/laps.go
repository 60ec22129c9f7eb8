package ghostplot

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/race"
)

// Attempt is one race attempt shown on a lap chart.
type Attempt struct {
	Label    string
	LapTimes []time.Duration
	Total    time.Duration
}

// LapChart writes an HTML page with per-lap times of each attempt and the
// attempt totals. best, when set, is shown as the track record.
func LapChart(w io.Writer, track string, attempts []Attempt, best time.Duration) error {
	subtitle := fmt.Sprintf("%d attempt(s)", len(attempts))
	if best > 0 {
		subtitle += " | record " + race.FormatLapTime(best)
	}

	maxLaps := 0
	for _, a := range attempts {
		if len(a.LapTimes) > maxLaps {
			maxLaps = len(a.LapTimes)
		}
	}
	laps := make([]string, maxLaps)
	for i := range laps {
		laps[i] = fmt.Sprintf("Lap %d", i+1)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Lap times - " + track, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Lap times: " + track, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "seconds", Scale: opts.Bool(true)}),
	)
	line.SetXAxis(laps)
	for _, a := range attempts {
		data := make([]opts.LineData, len(a.LapTimes))
		for i, d := range a.LapTimes {
			data[i] = opts.LineData{Value: seconds(d), Name: race.FormatLapTime(d)}
		}
		line.AddSeries(a.Label, data)
	}

	labels := make([]string, len(attempts))
	totals := make([]opts.BarData, len(attempts))
	for i, a := range attempts {
		labels[i] = a.Label
		totals[i] = opts.BarData{Value: seconds(a.Total), Name: race.FormatLapTime(a.Total)}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Race totals"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "seconds", Scale: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("total", totals,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.PageTitle = "Lap times - " + track
	page.AddCharts(line, bar)
	return page.Render(w)
}

func seconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000
}
