package view

import (
	"fmt"

	"github.com/angas/aircast-go/aqi"
	"github.com/angas/aircast-go/forecast"
	"github.com/angas/aircast-go/selection"
)

// Model is everything the page and the charts need for one selection.
type Model struct {
	City       forecast.City                  `json:"city"`
	Cities     []forecast.City                `json:"cities"`
	Selection  selection.Selection            `json:"selection"`
	Pollutants []selection.Pollutant          `json:"pollutants"`
	Current    Summary                        `json:"current"`
	Alert      string                         `json:"alert"`
	Series     []Point                        `json:"series"`
	Weekly     []forecast.WeeklyPatternSample `json:"weekly"`
	Peak       PeakWindow                     `json:"peak"`
	Advisories []Advisory                     `json:"advisories"`
}

type Summary struct {
	AQI          int      `json:"aqi"`
	Band         aqi.Band `json:"band"`
	NO2          float64  `json:"no2"`
	O3           float64  `json:"o3"`
	TemperatureC float64  `json:"temperatureC"`
	HumidityPct  float64  `json:"humidityPct"`
}

// Point is one sample sliced by the selected pollutant. A pollutant that is
// not selected is nil and left out of the JSON.
type Point struct {
	TimeOffsetHours int      `json:"timeOffsetHours"`
	Label           string   `json:"label"`
	At              string   `json:"at"`
	NO2             *float64 `json:"no2,omitempty"`
	O3              *float64 `json:"o3,omitempty"`
	AQI             int      `json:"aqi"`
}

type PeakWindow struct {
	FromOffset int `json:"fromOffset"`
	ToOffset   int `json:"toOffset"`
	AQI        int `json:"aqi"`
}

func (p PeakWindow) String() string {
	return fmt.Sprintf("%s - %s", clock(p.FromOffset), clock(p.ToOffset))
}

type Advisory struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

const peakWindowHours = 6

// findPeakWindow looks at the first day of the series and returns the
// window ending at its highest AQI sample. A peak at offset 0 has nothing
// before it, so its window runs forward instead.
func findPeakWindow(s []forecast.ForecastSample) PeakWindow {
	best := s[0]
	for _, v := range s {
		if v.TimeOffsetHours >= 24 {
			break
		}
		if v.AQI > best.AQI {
			best = v
		}
	}
	if best.TimeOffsetHours == 0 {
		return PeakWindow{FromOffset: 0, ToOffset: peakWindowHours, AQI: best.AQI}
	}
	return PeakWindow{
		FromOffset: max(0, best.TimeOffsetHours-peakWindowHours),
		ToOffset:   best.TimeOffsetHours,
		AQI:        best.AQI,
	}
}

func clock(offsetHours int) string {
	h := offsetHours % 24
	switch {
	case h == 0:
		return "12 AM"
	case h == 12:
		return "12 PM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	default:
		return fmt.Sprintf("%d PM", h-12)
	}
}

func alertText(currentAQI int, band aqi.Band, peak PeakWindow) string {
	return fmt.Sprintf("Current AQI: %d - %s. Sensitive groups should limit outdoor activities during peak hours (%s).",
		currentAQI, band.DisplayName, peak)
}

func advisories(s []forecast.ForecastSample, band aqi.Band, peak PeakWindow) []Advisory {
	out := []Advisory{{
		Kind:  "peak",
		Title: "Peak Pollution Hours",
		Text:  fmt.Sprintf("Expected between %s today. Plan outdoor activities before or after.", peak),
	}}

	if band.Label.Severity() >= aqi.LabelUnhealthy.Severity() {
		out = append(out, Advisory{
			Kind:  "sensitive",
			Title: "Everyone",
			Text:  "Everyone should reduce prolonged or heavy outdoor exertion. Sensitive groups should stay indoors.",
		})
	} else {
		out = append(out, Advisory{
			Kind:  "sensitive",
			Title: "Sensitive Groups",
			Text:  "Children, elderly, and people with respiratory conditions should limit prolonged outdoor exposure.",
		})
	}

	// Compare the evening after the peak with the peak itself.
	evening := peak.AQI
	for _, v := range s {
		if v.TimeOffsetHours > peak.ToOffset && v.TimeOffsetHours < 24 {
			evening = v.AQI
		}
	}
	if evening < peak.AQI {
		out = append(out, Advisory{
			Kind:  "trend",
			Title: "Air Quality Improvement",
			Text:  "Conditions expected to improve by evening due to favorable wind patterns.",
		})
	} else {
		out = append(out, Advisory{
			Kind:  "trend",
			Title: "Elevated Levels Ahead",
			Text:  "Pollution levels are expected to stay elevated through the evening.",
		})
	}

	return out
}
