package chartjs

import (
	"math"
)

const (
	ColorTeal   = "#19e6d1d4" // hsl(175, 80%, 50%)
	ColorBlue   = "#20aadfd4" // hsl(195, 75%, 50%)
	ColorOrange = "#f5912ed4" // hsl(30, 90%, 55%)
	YAxisID     = "y"
)

// NewChart returns a chart with one left y axis and no datasets.
func NewChart(chartType, title string, labels []string) Chart {
	chart := Chart{
		Type: chartType,
		Data: ChartData{
			Labels:   labels,
			Datasets: []ChartDataset{},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Legend: ChartLegend{Display: true},
				Title:  ChartTitle{Display: false},
			},
			Scales: map[string]ChartScale{
				YAxisID: {
					Type:     "linear",
					Display:  true,
					Position: "left",
					Title:    ChartScaleTitle{Display: true}},
			},
		},
	}

	if title != "" {
		chart.Options.Plugins.Title = ChartTitle{Display: true, Text: title}
	}

	return chart
}

// AddDataset appends a series drawn against the y axis. Area series are
// filled with a translucent version of the line color.
func (c *Chart) AddDataset(label, color string, area bool, data []*float64) *ChartDataset {
	ds := ChartDataset{
		Label:       label,
		Data:        data,
		BorderWidth: 2,
		Tension:     0.4,
		Fill:        area,
		BorderColor: color,
		YAxisID:     YAxisID,
	}
	if area {
		ds.BackgroundColor = Translucent(color)
	}
	c.Data.Datasets = append(c.Data.Datasets, ds)
	return &c.Data.Datasets[len(c.Data.Datasets)-1]
}

func (c *Chart) WithYAxisTitle(title string) *Chart {
	c.Options.Scales[YAxisID] = c.Options.Scales[YAxisID].WithTitle(title)
	return c
}

func (cs ChartScale) WithTitle(title string) ChartScale {
	cs.Title.Text = title
	return cs
}

func (cs ChartScale) WithMinAndMax(min, max float64) ChartScale {
	cs.Min = &min
	cs.Max = &max
	return cs
}

// Translucent replaces the alpha of an #rrggbbaa color with 0x4d (30%).
func Translucent(color string) string {
	if len(color) != 9 {
		return color
	}
	return color[:7] + "4d"
}

func FixedFloat64(num float64, precision int) *float64 {
	p := math.Pow(10, float64(precision))
	rounded := math.Round(num * p)
	result := rounded / p
	return &result
}
