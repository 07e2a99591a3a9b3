package www

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/angas/aircast-go/aqi"
	"github.com/angas/aircast-go/forecast"
)

func NewCitiesHandler(logger *slog.Logger, provider forecast.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, provider.SupportedCities())
	}
}

func NewHourlySeriesHandler(logger *slog.Logger, provider forecast.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := provider.HourlySeries(r.PathValue("city"))
		if err != nil {
			writeError(w, logger, "handling hourly series request", err)
			return
		}
		writeJSON(w, logger, s)
	}
}

func NewWeeklySeriesHandler(logger *slog.Logger, provider forecast.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := provider.WeeklySeries(r.PathValue("city"))
		if err != nil {
			writeError(w, logger, "handling weekly series request", err)
			return
		}
		writeJSON(w, logger, s)
	}
}

func NewClassifyHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.PathValue("value")
		value, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("aqi must be an integer, got %q", raw), http.StatusBadRequest)
			return
		}
		band, err := aqi.Classify(value)
		if err != nil {
			writeError(w, logger, "handling aqi request", err)
			return
		}
		writeJSON(w, logger, band)
	}
}

func NewBandsHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, aqi.Bands())
	}
}
