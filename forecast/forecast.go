package forecast

import (
	"fmt"

	"github.com/angas/aircast-go/slice"
)

const (
	HorizonHours  = 48
	StepHours     = 3
	HourlySamples = HorizonHours/StepHours + 1
)

type City struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"displayName" yaml:"name"`
}

type Weekday string

const (
	Monday    Weekday = "Mon"
	Tuesday   Weekday = "Tue"
	Wednesday Weekday = "Wed"
	Thursday  Weekday = "Thu"
	Friday    Weekday = "Fri"
	Saturday  Weekday = "Sat"
	Sunday    Weekday = "Sun"
)

// Weekdays in the order a weekly series is presented.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

type ForecastSample struct {
	TimeOffsetHours int     `json:"timeOffsetHours" yaml:"offset"`
	NO2             float64 `json:"no2" yaml:"no2"` // µg/m³
	O3              float64 `json:"o3" yaml:"o3"`   // µg/m³
	AQI             int     `json:"aqi" yaml:"aqi"`
	TemperatureC    float64 `json:"temperatureC" yaml:"temp"`
	HumidityPct     float64 `json:"humidityPct" yaml:"humidity"`
}

type WeeklyPatternSample struct {
	Day     Weekday `json:"day" yaml:"day"`
	AvgAQI  float64 `json:"avgAqi" yaml:"avg"`
	PeakAQI float64 `json:"peakAqi" yaml:"peak"`
}

// Provider is the read-only source of forecast series. Implementations must
// return restartable sequences: every call yields the same ordered data and
// callers may modify the returned slices freely.
type Provider interface {
	SupportedCities() []City
	HourlySeries(cityID string) ([]ForecastSample, error)
	WeeklySeries(cityID string) ([]WeeklyPatternSample, error)
}

type UnknownCityError struct {
	CityID string
}

func (e *UnknownCityError) Error() string {
	return fmt.Sprintf("unknown city %q", e.CityID)
}

// IsSupported reports whether cityID is one of p's cities.
func IsSupported(p Provider, cityID string) bool {
	_, err := FindCity(p, cityID)
	return err == nil
}

// FindCity looks up a city by id.
func FindCity(p Provider, cityID string) (City, error) {
	c, ok := slice.Find(p.SupportedCities(), func(c City) bool { return c.ID == cityID })
	if !ok {
		return City{}, &UnknownCityError{CityID: cityID}
	}
	return c, nil
}
