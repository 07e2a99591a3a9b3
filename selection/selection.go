package selection

import (
	"fmt"
	"strings"
	"sync"

	"github.com/angas/aircast-go/forecast"
)

type Pollutant string

const (
	PollutantNO2  Pollutant = "NO2"
	PollutantO3   Pollutant = "O3"
	PollutantBoth Pollutant = "Both"
)

var Pollutants = []Pollutant{PollutantNO2, PollutantO3, PollutantBoth}

func (p Pollutant) Valid() bool {
	switch p {
	case PollutantNO2, PollutantO3, PollutantBoth:
		return true
	}
	return false
}

func (p Pollutant) IncludesNO2() bool { return p == PollutantNO2 || p == PollutantBoth }
func (p Pollutant) IncludesO3() bool  { return p == PollutantO3 || p == PollutantBoth }

type InvalidSelectionError struct {
	Value string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid pollutant selection %q: expected one of NO2, O3, Both", e.Value)
}

// ParsePollutant accepts the canonical names and the lower case tab values
// used by the page ("no2", "o3", "both").
func ParsePollutant(s string) (Pollutant, error) {
	for _, p := range Pollutants {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", &InvalidSelectionError{Value: s}
}

// Selection is an immutable snapshot of what a view shows.
type Selection struct {
	City      string    `json:"city"`
	Pollutant Pollutant `json:"pollutant"`
}

type OnChange func(Selection)

// State is the selection owned by a single view. Setters validate before
// mutating, so a failed call leaves the previous snapshot in place.
type State struct {
	mu        sync.RWMutex
	provider  forecast.Provider
	current   Selection
	listeners []OnChange
}

func New(provider forecast.Provider, initial Selection) (*State, error) {
	if !forecast.IsSupported(provider, initial.City) {
		return nil, &forecast.UnknownCityError{CityID: initial.City}
	}
	if !initial.Pollutant.Valid() {
		return nil, &InvalidSelectionError{Value: string(initial.Pollutant)}
	}
	return &State{provider: provider, current: initial}, nil
}

// NewDefault starts on the provider's first city with NO2 selected.
func NewDefault(provider forecast.Provider) (*State, error) {
	cities := provider.SupportedCities()
	if len(cities) == 0 {
		return nil, fmt.Errorf("provider has no cities")
	}
	return New(provider, Selection{City: cities[0].ID, Pollutant: PollutantNO2})
}

// OnChange registers fn to run synchronously after every successful setter
// call, before the setter returns.
func (s *State) OnChange(fn OnChange) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *State) Current() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *State) SetCity(cityID string) error {
	if !forecast.IsSupported(s.provider, cityID) {
		return &forecast.UnknownCityError{CityID: cityID}
	}
	s.update(func(sel *Selection) { sel.City = cityID })
	return nil
}

func (s *State) SetPollutant(p Pollutant) error {
	if !p.Valid() {
		return &InvalidSelectionError{Value: string(p)}
	}
	s.update(func(sel *Selection) { sel.Pollutant = p })
	return nil
}

func (s *State) update(fn func(*Selection)) {
	s.mu.Lock()
	fn(&s.current)
	snapshot := s.current
	listeners := append([]OnChange(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}
