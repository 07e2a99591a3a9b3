package selection

import (
	"errors"
	"testing"

	"github.com/angas/aircast-go/forecast"
)

func newState(t *testing.T) *State {
	t.Helper()
	p, err := forecast.NewStaticProvider()
	if err != nil {
		t.Fatalf("NewStaticProvider() unexpected error: %v", err)
	}
	s, err := NewDefault(p)
	if err != nil {
		t.Fatalf("NewDefault() unexpected error: %v", err)
	}
	return s
}

func TestDefaultSelection(t *testing.T) {
	s := newState(t)
	expected := Selection{City: "delhi", Pollutant: PollutantNO2}
	if got := s.Current(); got != expected {
		t.Errorf("expected %+v, got %+v", expected, got)
	}
}

func TestSetCity(t *testing.T) {
	s := newState(t)
	if err := s.SetCity("chennai"); err != nil {
		t.Fatalf("SetCity unexpected error: %v", err)
	}
	if got := s.Current().City; got != "chennai" {
		t.Errorf("expected city chennai, got %q", got)
	}
}

func TestSetUnknownCityLeavesStateUnchanged(t *testing.T) {
	s := newState(t)
	if err := s.SetPollutant(PollutantO3); err != nil {
		t.Fatalf("SetPollutant unexpected error: %v", err)
	}
	before := s.Current()

	err := s.SetCity("atlantis")
	var cityErr *forecast.UnknownCityError
	if !errors.As(err, &cityErr) {
		t.Fatalf("expected UnknownCityError, got %v", err)
	}
	if after := s.Current(); after != before {
		t.Errorf("expected selection %+v to be unchanged, got %+v", before, after)
	}
}

func TestSetInvalidPollutant(t *testing.T) {
	s := newState(t)
	before := s.Current()

	err := s.SetPollutant(Pollutant("PM25"))
	var selErr *InvalidSelectionError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected InvalidSelectionError, got %v", err)
	}
	if after := s.Current(); after != before {
		t.Errorf("expected selection %+v to be unchanged, got %+v", before, after)
	}
}

func TestSetPollutantIdempotent(t *testing.T) {
	once := newState(t)
	twice := newState(t)

	if err := once.SetPollutant(PollutantNO2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := twice.SetPollutant(PollutantNO2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if once.Current() != twice.Current() {
		t.Errorf("expected %+v, got %+v", once.Current(), twice.Current())
	}
}

func TestOnChangeIsSynchronous(t *testing.T) {
	s := newState(t)

	var seen []Selection
	s.OnChange(func(sel Selection) {
		if cur := s.Current(); cur != sel {
			t.Errorf("listener saw %+v but Current() returned %+v", sel, cur)
		}
		seen = append(seen, sel)
	})

	_ = s.SetCity("mumbai")
	_ = s.SetCity("atlantis")
	_ = s.SetPollutant(PollutantBoth)

	expected := []Selection{
		{City: "mumbai", Pollutant: PollutantNO2},
		{City: "mumbai", Pollutant: PollutantBoth},
	}
	if len(seen) != len(expected) {
		t.Fatalf("expected %d notifications, got %d", len(expected), len(seen))
	}
	for i := range expected {
		if seen[i] != expected[i] {
			t.Errorf("notification %d expected %+v, got %+v", i, expected[i], seen[i])
		}
	}
}

func TestParsePollutant(t *testing.T) {
	tests := []struct {
		in       string
		expected Pollutant
		wantErr  bool
	}{
		{"no2", PollutantNO2, false},
		{"NO2", PollutantNO2, false},
		{"o3", PollutantO3, false},
		{"both", PollutantBoth, false},
		{"Both", PollutantBoth, false},
		{"pm10", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePollutant(tt.in)
		if tt.wantErr {
			var selErr *InvalidSelectionError
			if !errors.As(err, &selErr) {
				t.Errorf("ParsePollutant(%q) expected InvalidSelectionError, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("ParsePollutant(%q) expected %s, got %s (err %v)", tt.in, tt.expected, got, err)
		}
	}
}

func TestNewRejectsInvalidInitial(t *testing.T) {
	p, _ := forecast.NewStaticProvider()
	if _, err := New(p, Selection{City: "atlantis", Pollutant: PollutantNO2}); err == nil {
		t.Errorf("expected error for unknown initial city")
	}
	if _, err := New(p, Selection{City: "delhi", Pollutant: "CO"}); err == nil {
		t.Errorf("expected error for invalid initial pollutant")
	}
}
