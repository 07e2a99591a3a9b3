package view

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/angas/aircast-go/aqi"
	"github.com/angas/aircast-go/forecast"
	"github.com/angas/aircast-go/hours"
	"github.com/angas/aircast-go/selection"
	"github.com/angas/aircast-go/slice"
)

// View is one forecast page instance. It owns its selection and rebuilds the
// chart-facing model from the provider whenever the selection changes.
type View struct {
	logger   *slog.Logger
	provider forecast.Provider
	state    *selection.State
	now      func() time.Time
}

func New(logger *slog.Logger, provider forecast.Provider) (*View, error) {
	state, err := selection.NewDefault(provider)
	if err != nil {
		return nil, fmt.Errorf("initializing selection: %w", err)
	}
	return &View{
		logger:   logger,
		provider: provider,
		state:    state,
		now:      time.Now,
	}, nil
}

func (v *View) Selection() selection.Selection {
	return v.state.Current()
}

func (v *View) SetCity(cityID string) error {
	if err := v.state.SetCity(cityID); err != nil {
		v.logger.Debug("city selection rejected", slog.String("city", cityID), slog.Any("error", err))
		return err
	}
	return nil
}

func (v *View) SetPollutant(p selection.Pollutant) error {
	if err := v.state.SetPollutant(p); err != nil {
		v.logger.Debug("pollutant selection rejected", slog.String("pollutant", string(p)), slog.Any("error", err))
		return err
	}
	return nil
}

// Apply parses raw UI values and applies them in order, city first. Empty
// values are skipped. It stops at the first rejected value.
func (v *View) Apply(city, pollutant string) error {
	if city != "" {
		if err := v.SetCity(city); err != nil {
			return err
		}
	}
	if pollutant != "" {
		p, err := selection.ParsePollutant(pollutant)
		if err != nil {
			return err
		}
		if err := v.SetPollutant(p); err != nil {
			return err
		}
	}
	return nil
}

// OnChange runs fn with the rebuilt model after every successful selection
// change.
func (v *View) OnChange(fn func(Model)) {
	v.state.OnChange(func(sel selection.Selection) {
		m, err := v.build(sel)
		if err != nil {
			v.logger.Error("rebuilding forecast model", slog.Any("error", err))
			return
		}
		fn(m)
	})
}

func (v *View) Model() (Model, error) {
	return v.build(v.state.Current())
}

func (v *View) build(sel selection.Selection) (Model, error) {
	city, err := forecast.FindCity(v.provider, sel.City)
	if err != nil {
		return Model{}, err
	}
	hourly, err := v.provider.HourlySeries(sel.City)
	if err != nil {
		return Model{}, err
	}
	weekly, err := v.provider.WeeklySeries(sel.City)
	if err != nil {
		return Model{}, err
	}
	if len(hourly) == 0 {
		return Model{}, fmt.Errorf("empty hourly series for %s", sel.City)
	}

	current := hourly[0]
	band, err := aqi.Classify(current.AQI)
	if err != nil {
		return Model{}, fmt.Errorf("classifying current sample for %s: %w", sel.City, err)
	}

	start := hours.ForecastStart(v.now(), forecast.StepHours)
	peak := findPeakWindow(hourly)

	return Model{
		City:       city,
		Cities:     v.provider.SupportedCities(),
		Selection:  sel,
		Pollutants: selection.Pollutants,
		Current: Summary{
			AQI:          current.AQI,
			Band:         band,
			NO2:          current.NO2,
			O3:           current.O3,
			TemperatureC: current.TemperatureC,
			HumidityPct:  current.HumidityPct,
		},
		Alert:      alertText(current.AQI, band, peak),
		Series:     slice.Map(hourly, func(s forecast.ForecastSample) Point { return toPoint(s, sel.Pollutant, start) }),
		Weekly:     weekly,
		Peak:       peak,
		Advisories: advisories(hourly, band, peak),
	}, nil
}

func toPoint(s forecast.ForecastSample, p selection.Pollutant, start hours.DateHour) Point {
	pt := Point{
		TimeOffsetHours: s.TimeOffsetHours,
		Label:           hours.OffsetLabel(s.TimeOffsetHours),
		At:              start.Add(s.TimeOffsetHours).LocalizedString(),
		AQI:             s.AQI,
	}
	if p.IncludesNO2() {
		no2 := s.NO2
		pt.NO2 = &no2
	}
	if p.IncludesO3() {
		o3 := s.O3
		pt.O3 = &o3
	}
	return pt
}
