package view

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/angas/aircast-go/aqi"
	"github.com/angas/aircast-go/forecast"
	"github.com/angas/aircast-go/selection"
)

func newView(t *testing.T) *View {
	t.Helper()
	p, err := forecast.NewStaticProvider()
	if err != nil {
		t.Fatalf("NewStaticProvider() unexpected error: %v", err)
	}
	v, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), p)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return v
}

func TestBothPollutantsEndToEnd(t *testing.T) {
	v := newView(t)

	expected := selection.Selection{City: "delhi", Pollutant: selection.PollutantNO2}
	if got := v.Selection(); got != expected {
		t.Fatalf("expected initial selection %+v, got %+v", expected, got)
	}

	if err := v.SetPollutant(selection.PollutantBoth); err != nil {
		t.Fatalf("SetPollutant unexpected error: %v", err)
	}

	m, err := v.Model()
	if err != nil {
		t.Fatalf("Model() unexpected error: %v", err)
	}
	expected = selection.Selection{City: "delhi", Pollutant: selection.PollutantBoth}
	if m.Selection != expected {
		t.Errorf("expected selection %+v, got %+v", expected, m.Selection)
	}
	if len(m.Series) != forecast.HourlySamples {
		t.Fatalf("expected %d points, got %d", forecast.HourlySamples, len(m.Series))
	}
	for _, p := range m.Series {
		if p.NO2 == nil || p.O3 == nil {
			t.Errorf("point %s missing a pollutant: %+v", p.Label, p)
		}
	}
}

func TestSeriesSlicedByPollutant(t *testing.T) {
	tests := []struct {
		pollutant selection.Pollutant
		wantNO2   bool
		wantO3    bool
	}{
		{selection.PollutantNO2, true, false},
		{selection.PollutantO3, false, true},
		{selection.PollutantBoth, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.pollutant), func(t *testing.T) {
			v := newView(t)
			if err := v.SetPollutant(tt.pollutant); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			m, err := v.Model()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			buf, err := json.Marshal(m.Series[0])
			if err != nil {
				t.Fatalf("marshal point: %v", err)
			}
			js := string(buf)
			if strings.Contains(js, `"no2"`) != tt.wantNO2 {
				t.Errorf("no2 presence expected %v in %s", tt.wantNO2, js)
			}
			if strings.Contains(js, `"o3"`) != tt.wantO3 {
				t.Errorf("o3 presence expected %v in %s", tt.wantO3, js)
			}
		})
	}
}

func TestCurrentSummaryForDelhi(t *testing.T) {
	v := newView(t)
	m, err := v.Model()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Current.AQI != 68 || m.Current.Band.Label != aqi.LabelModerate {
		t.Errorf("expected current AQI 68 Moderate, got %d %s", m.Current.AQI, m.Current.Band.Label)
	}
	if m.Current.NO2 != 45 || m.Current.TemperatureC != 18 || m.Current.HumidityPct != 65 {
		t.Errorf("unexpected current conditions: %+v", m.Current)
	}

	expectedAlert := "Current AQI: 68 - Moderate. Sensitive groups should limit outdoor activities during peak hours (12 PM - 6 PM)."
	if m.Alert != expectedAlert {
		t.Errorf("expected alert %q, got %q", expectedAlert, m.Alert)
	}
	if m.Peak.FromOffset != 12 || m.Peak.ToOffset != 18 || m.Peak.AQI != 98 {
		t.Errorf("unexpected peak window %+v", m.Peak)
	}
	if len(m.Advisories) != 3 || m.Advisories[2].Title != "Air Quality Improvement" {
		t.Errorf("unexpected advisories %+v", m.Advisories)
	}
}

func TestSetCityRebuildsFromProvider(t *testing.T) {
	v := newView(t)

	var models []Model
	v.OnChange(func(m Model) { models = append(models, m) })

	if err := v.SetCity("bangalore"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("expected 1 change notification, got %d", len(models))
	}
	m := models[0]
	if m.City.ID != "bangalore" || m.City.DisplayName != "Bangalore" {
		t.Errorf("expected bangalore, got %+v", m.City)
	}
	if m.Current.AQI != 42 || m.Current.Band.Label != aqi.LabelGood {
		t.Errorf("expected current AQI 42 Good, got %d %s", m.Current.AQI, m.Current.Band.Label)
	}
	if len(m.Weekly) != 7 {
		t.Errorf("expected 7 weekly samples, got %d", len(m.Weekly))
	}
}

func TestRejectedChangeKeepsLastValidModel(t *testing.T) {
	v := newView(t)
	if err := v.SetCity("mumbai"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notified := false
	v.OnChange(func(Model) { notified = true })

	err := v.Apply("atlantis", "")
	var cityErr *forecast.UnknownCityError
	if !errors.As(err, &cityErr) {
		t.Fatalf("expected UnknownCityError, got %v", err)
	}
	err = v.Apply("", "pm25")
	var selErr *selection.InvalidSelectionError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected InvalidSelectionError, got %v", err)
	}
	if notified {
		t.Errorf("rejected changes must not notify")
	}

	m, err := v.Model()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Selection.City != "mumbai" || m.Selection.Pollutant != selection.PollutantNO2 {
		t.Errorf("expected mumbai/NO2 to be kept, got %+v", m.Selection)
	}
}

func TestPeakWindowClock(t *testing.T) {
	tests := []struct {
		window   PeakWindow
		expected string
	}{
		{PeakWindow{FromOffset: 12, ToOffset: 18}, "12 PM - 6 PM"},
		{PeakWindow{FromOffset: 0, ToOffset: 3}, "12 AM - 3 AM"},
		{PeakWindow{FromOffset: 15, ToOffset: 21}, "3 PM - 9 PM"},
	}
	for _, tt := range tests {
		if s := tt.window.String(); s != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, s)
		}
	}
}

// fixedProvider serves one city whose AQI is given per three-hour step.
type fixedProvider struct {
	aqi []int
}

func (p fixedProvider) SupportedCities() []forecast.City {
	return []forecast.City{{ID: "testville", DisplayName: "Testville"}}
}

func (p fixedProvider) HourlySeries(cityID string) ([]forecast.ForecastSample, error) {
	if cityID != "testville" {
		return nil, &forecast.UnknownCityError{CityID: cityID}
	}
	out := make([]forecast.ForecastSample, len(p.aqi))
	for i, v := range p.aqi {
		out[i] = forecast.ForecastSample{TimeOffsetHours: i * forecast.StepHours, NO2: 40, O3: 30, AQI: v, HumidityPct: 50}
	}
	return out, nil
}

func (p fixedProvider) WeeklySeries(cityID string) ([]forecast.WeeklyPatternSample, error) {
	if cityID != "testville" {
		return nil, &forecast.UnknownCityError{CityID: cityID}
	}
	out := make([]forecast.WeeklyPatternSample, len(forecast.Weekdays))
	for i, d := range forecast.Weekdays {
		out[i] = forecast.WeeklyPatternSample{Day: d, AvgAQI: 60, PeakAQI: 80}
	}
	return out, nil
}

func TestPeakWindowFromSeries(t *testing.T) {
	tests := []struct {
		name         string
		aqi          []int
		expectedPeak PeakWindow
		expectedText string
	}{
		{
			name:         "peak at first sample runs forward",
			aqi:          []int{120, 110, 100, 95, 90, 85, 80, 75, 70, 68, 66, 64, 62, 60, 58, 56, 54},
			expectedPeak: PeakWindow{FromOffset: 0, ToOffset: 6, AQI: 120},
			expectedText: "(12 AM - 6 AM)",
		},
		{
			name:         "peak early in the day is cut at midnight",
			aqi:          []int{50, 90, 60, 55, 50, 45, 40, 35, 30, 30, 30, 30, 30, 30, 30, 30, 30},
			expectedPeak: PeakWindow{FromOffset: 0, ToOffset: 3, AQI: 90},
			expectedText: "(12 AM - 3 AM)",
		},
		{
			name:         "second day ignored",
			aqi:          []int{40, 45, 50, 55, 60, 65, 70, 75, 200, 200, 200, 200, 200, 200, 200, 200, 200},
			expectedPeak: PeakWindow{FromOffset: 15, ToOffset: 21, AQI: 75},
			expectedText: "(3 PM - 9 PM)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), fixedProvider{aqi: tt.aqi})
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			m, err := v.Model()
			if err != nil {
				t.Fatalf("Model() unexpected error: %v", err)
			}
			if m.Peak != tt.expectedPeak {
				t.Errorf("expected peak %+v, got %+v", tt.expectedPeak, m.Peak)
			}
			if m.Peak.FromOffset == m.Peak.ToOffset {
				t.Errorf("expected a non-empty peak window, got %s", m.Peak)
			}
			if !strings.Contains(m.Alert, tt.expectedText) {
				t.Errorf("expected alert to contain %q, got %q", tt.expectedText, m.Alert)
			}
		})
	}
}
