package forecast

import (
	"errors"
	"fmt"
)

func ValidateHourly(s []ForecastSample) error {
	if len(s) != HourlySamples {
		return fmt.Errorf("expected %d samples, got %d", HourlySamples, len(s))
	}
	for i, v := range s {
		if v.TimeOffsetHours != i*StepHours {
			return fmt.Errorf("sample %d has offset %d, expected %d", i, v.TimeOffsetHours, i*StepHours)
		}
		if v.NO2 < 0 || v.O3 < 0 {
			return fmt.Errorf("negative concentration at offset %d", v.TimeOffsetHours)
		}
		if v.AQI < 0 || v.AQI > 500 {
			return fmt.Errorf("aqi %d out of range at offset %d", v.AQI, v.TimeOffsetHours)
		}
		if v.HumidityPct < 0 || v.HumidityPct > 100 {
			return fmt.Errorf("humidity %.1f out of range at offset %d", v.HumidityPct, v.TimeOffsetHours)
		}
	}
	return nil
}

func ValidateWeekly(s []WeeklyPatternSample) error {
	if len(s) != len(Weekdays) {
		return fmt.Errorf("expected %d days, got %d", len(Weekdays), len(s))
	}
	for i, v := range s {
		if v.Day != Weekdays[i] {
			return fmt.Errorf("entry %d is %q, expected %q", i, v.Day, Weekdays[i])
		}
		if v.AvgAQI < 0 {
			return fmt.Errorf("negative average on %s", v.Day)
		}
		if v.PeakAQI < v.AvgAQI {
			return fmt.Errorf("peak %.1f below average %.1f on %s", v.PeakAQI, v.AvgAQI, v.Day)
		}
	}
	return nil
}

// Validate checks every series a provider serves. A replacement provider
// must pass this to be a drop-in for StaticProvider.
func Validate(p Provider) error {
	cities := p.SupportedCities()
	if len(cities) == 0 {
		return errors.New("provider has no cities")
	}
	for _, c := range cities {
		h, err := p.HourlySeries(c.ID)
		if err != nil {
			return err
		}
		if err := ValidateHourly(h); err != nil {
			return fmt.Errorf("hourly series for %s: %w", c.ID, err)
		}
		w, err := p.WeeklySeries(c.ID)
		if err != nil {
			return err
		}
		if err := ValidateWeekly(w); err != nil {
			return fmt.Errorf("weekly series for %s: %w", c.ID, err)
		}
	}
	return nil
}
