package forecast

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed data/samples.yaml
var embeddedSamples []byte

type cityTable struct {
	City   `yaml:",inline"`
	Hourly []ForecastSample      `yaml:"hourly"`
	Weekly []WeeklyPatternSample `yaml:"weekly"`
}

type sampleFile struct {
	Cities []cityTable `yaml:"cities"`
}

// StaticProvider serves sample tables fixed at process start. It stands in
// for a live forecast feed and is safe for concurrent readers.
type StaticProvider struct {
	cities []City
	hourly map[string][]ForecastSample
	weekly map[string][]WeeklyPatternSample
}

// NewStaticProvider loads the embedded sample tables.
func NewStaticProvider() (*StaticProvider, error) {
	return ParseStaticProvider(embeddedSamples)
}

// ParseStaticProvider builds a provider from YAML sample tables and rejects
// tables that break the series invariants.
func ParseStaticProvider(data []byte) (*StaticProvider, error) {
	var f sampleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unable to parse sample tables: %w", err)
	}
	if len(f.Cities) == 0 {
		return nil, fmt.Errorf("sample tables contain no cities")
	}

	p := &StaticProvider{
		hourly: make(map[string][]ForecastSample),
		weekly: make(map[string][]WeeklyPatternSample),
	}
	for _, t := range f.Cities {
		if t.ID == "" {
			return nil, fmt.Errorf("city without id in sample tables")
		}
		if _, dup := p.hourly[t.ID]; dup {
			return nil, fmt.Errorf("city %q listed twice in sample tables", t.ID)
		}
		if err := ValidateHourly(t.Hourly); err != nil {
			return nil, fmt.Errorf("hourly series for %s: %w", t.ID, err)
		}
		if err := ValidateWeekly(t.Weekly); err != nil {
			return nil, fmt.Errorf("weekly series for %s: %w", t.ID, err)
		}
		p.cities = append(p.cities, t.City)
		p.hourly[t.ID] = t.Hourly
		p.weekly[t.ID] = t.Weekly
	}

	return p, nil
}

func (p *StaticProvider) SupportedCities() []City {
	return slices.Clone(p.cities)
}

func (p *StaticProvider) HourlySeries(cityID string) ([]ForecastSample, error) {
	s, ok := p.hourly[cityID]
	if !ok {
		return nil, &UnknownCityError{CityID: cityID}
	}
	return slices.Clone(s), nil
}

func (p *StaticProvider) WeeklySeries(cityID string) ([]WeeklyPatternSample, error) {
	s, ok := p.weekly[cityID]
	if !ok {
		return nil, &UnknownCityError{CityID: cityID}
	}
	return slices.Clone(s), nil
}
