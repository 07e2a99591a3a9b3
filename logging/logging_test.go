package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

type memStore struct {
	entries []LogEntry
}

func (m *memStore) SaveLogEntry(_ context.Context, e LogEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func strPtr(s string) *string { return &s }

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		name     string
		input    *string
		expected slog.Level
	}{
		{"nil", nil, slog.LevelInfo},
		{"debug lower case", strPtr("debug"), slog.LevelDebug},
		{"warn", strPtr("WARN"), slog.LevelWarn},
		{"warning", strPtr("warning"), slog.LevelWarn},
		{"error padded", strPtr(" ERROR "), slog.LevelError},
		{"unknown", strPtr("verbose"), slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFromString(tt.input); got != tt.expected {
				t.Errorf("LevelFromString() expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestSQLiteHandlerFormats(t *testing.T) {
	tests := []struct {
		format   LogAttrFormat
		expected string
	}{
		{LogAttrFormatText, `module=www; city=a\=b\;c`},
		{LogAttrFormatJSON, `[{"module":"www"},{"city":"a=b;c"}]`},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			store := &memStore{}
			logger := slog.New(NewSQLiteHandler(store, slog.LevelInfo, tt.format)).With("module", "www")
			logger.Info("city selected", slog.String("city", "a=b;c"))

			if len(store.entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(store.entries))
			}
			e := store.entries[0]
			if e.Message != "city selected" || e.Level != int(slog.LevelInfo) {
				t.Errorf("unexpected entry %+v", e)
			}
			if e.Attrs != tt.expected {
				t.Errorf("expected attrs %q, got %q", tt.expected, e.Attrs)
			}
		})
	}
}

func TestSQLiteHandlerMinLevel(t *testing.T) {
	store := &memStore{}
	logger := slog.New(NewSQLiteHandler(store, slog.LevelWarn, LogAttrFormatJSON))
	logger.Info("ignored")
	logger.Warn("kept")
	if len(store.entries) != 1 || store.entries[0].Message != "kept" {
		t.Errorf("expected only the warning to be stored, got %+v", store.entries)
	}
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	var console bytes.Buffer
	store := &memStore{}
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		NewSQLiteHandler(store, slog.LevelDebug, LogAttrFormatJSON)))

	logger.Debug("debug only in db")
	logger.Warn("everywhere")

	if strings.Contains(console.String(), "debug only in db") {
		t.Errorf("console handler received a record below its level")
	}
	if !strings.Contains(console.String(), "everywhere") {
		t.Errorf("console handler missed a warning")
	}
	if len(store.entries) != 2 {
		t.Errorf("expected 2 stored entries, got %d", len(store.entries))
	}
}
