package aqi

import (
	"fmt"
	"math"
)

type Label string

const (
	LabelGood          Label = "Good"
	LabelModerate      Label = "Moderate"
	LabelUnhealthy     Label = "Unhealthy"
	LabelVeryUnhealthy Label = "VeryUnhealthy"
	LabelHazardous     Label = "Hazardous"
)

// Severity is the position of the label in the banding table, 0 is least severe.
func (l Label) Severity() int {
	for i, b := range bands {
		if b.Label == l {
			return i
		}
	}
	return -1
}

// Band is a classification result. Everything except Label and the bounds is
// presentation, derived from the label only.
type Band struct {
	Label       Label  `json:"label"`
	DisplayName string `json:"displayName"`
	Min         int    `json:"min"`
	Max         int    `json:"max"` // inclusive, math.MaxInt for the last band
	ColorClass  string `json:"colorClass"`
	BgClass     string `json:"bgClass"`
	ChartColor  string `json:"chartColor"`
}

func (b Band) Contains(aqi int) bool {
	return aqi >= b.Min && aqi <= b.Max
}

type InvalidMeasurementError struct {
	Value int
}

func (e *InvalidMeasurementError) Error() string {
	return fmt.Sprintf("invalid aqi measurement %d: must not be negative", e.Value)
}

// Ordered ascending, upper bounds inclusive.
var bands = []Band{
	{Label: LabelGood, DisplayName: "Good", Min: 0, Max: 50, ColorClass: "text-chart-1", BgClass: "bg-chart-1/10", ChartColor: "#2dd4bfd4"},
	{Label: LabelModerate, DisplayName: "Moderate", Min: 51, Max: 100, ColorClass: "text-chart-2", BgClass: "bg-chart-2/10", ChartColor: "#ffc107d4"},
	{Label: LabelUnhealthy, DisplayName: "Unhealthy", Min: 101, Max: 150, ColorClass: "text-chart-3", BgClass: "bg-chart-3/10", ChartColor: "#ff9800d4"},
	{Label: LabelVeryUnhealthy, DisplayName: "Very Unhealthy", Min: 151, Max: 200, ColorClass: "text-chart-4", BgClass: "bg-chart-4/10", ChartColor: "#f44336d4"},
	{Label: LabelHazardous, DisplayName: "Hazardous", Min: 201, Max: math.MaxInt, ColorClass: "text-chart-5", BgClass: "bg-chart-5/10", ChartColor: "#9c27b0d4"},
}

func Classify(aqi int) (Band, error) {
	if aqi < 0 {
		return Band{}, &InvalidMeasurementError{Value: aqi}
	}
	for _, b := range bands {
		if aqi <= b.Max {
			return b, nil
		}
	}
	return bands[len(bands)-1], nil
}

// Bands returns a copy of the banding table in ascending order.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}
