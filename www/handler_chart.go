package www

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/angas/aircast-go/forecast"
	"github.com/angas/aircast-go/slice"
	"github.com/angas/aircast-go/view"
	"github.com/angas/aircast-go/www/chartjs"
)

// NewChartHandler returns the 48 hour forecast chart followed by the weekly
// pattern chart for the selection given by the query.
func NewChartHandler(logger *slog.Logger, provider forecast.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := modelFromQuery(logger, provider, r)
		if err != nil {
			writeError(w, logger, "handling chart request", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(Charts(m))
		if err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, "unable to encode data points", http.StatusInternalServerError)
			return
		}
	}
}

// Charts is the forecast chart followed by the weekly chart, both for the
// selection in m.
func Charts(m view.Model) []chartjs.Chart {
	return []chartjs.Chart{ForecastChart(m), WeeklyChart(m)}
}

// ForecastChart draws one area per selected pollutant.
func ForecastChart(m view.Model) chartjs.Chart {
	labels := slice.Map(m.Series, func(p view.Point) string { return p.Label })
	chart := chartjs.NewChart("line", "48-Hour Pollution Forecast", labels)

	if m.Selection.Pollutant.IncludesNO2() {
		chart.AddDataset("NO₂", chartjs.ColorTeal, true,
			slice.Map(m.Series, func(p view.Point) *float64 { return fixed(p.NO2) }))
	}
	if m.Selection.Pollutant.IncludesO3() {
		chart.AddDataset("O₃", chartjs.ColorBlue, true,
			slice.Map(m.Series, func(p view.Point) *float64 { return fixed(p.O3) }))
	}

	maxVal := 0.0
	for _, p := range m.Series {
		if p.NO2 != nil {
			maxVal = max(maxVal, *p.NO2)
		}
		if p.O3 != nil {
			maxVal = max(maxVal, *p.O3)
		}
	}
	maxVal = math.Ceil(maxVal/20) * 20 // Round up to nearest 20 µg/m³
	chart.Options.Scales[chartjs.YAxisID] = chart.Options.Scales[chartjs.YAxisID].
		WithTitle("μg/m³").
		WithMinAndMax(0, maxVal)

	return chart
}

// WeeklyChart draws the average line and a dashed peak line.
func WeeklyChart(m view.Model) chartjs.Chart {
	labels := slice.Map(m.Weekly, func(s forecast.WeeklyPatternSample) string { return string(s.Day) })
	chart := chartjs.NewChart("line", "Weekly Pattern", labels)

	chart.AddDataset("Average", chartjs.ColorTeal, false,
		slice.Map(m.Weekly, func(s forecast.WeeklyPatternSample) *float64 { return chartjs.FixedFloat64(s.AvgAQI, 1) }))
	peak := chart.AddDataset("Peak", chartjs.ColorOrange, false,
		slice.Map(m.Weekly, func(s forecast.WeeklyPatternSample) *float64 { return chartjs.FixedFloat64(s.PeakAQI, 1) }))
	peak.BorderDash = []int{5, 5}

	chart.WithYAxisTitle("AQI")
	return chart
}

func fixed(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return chartjs.FixedFloat64(*v, 2)
}
