package www

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/angas/aircast-go/aqi"
	"github.com/angas/aircast-go/forecast"
	"github.com/angas/aircast-go/selection"
	"github.com/angas/aircast-go/view"
)

func intOrDefault(u *url.URL, key string, defaultValue int) int {
	if v := u.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

// errorStatus maps selection and measurement errors to client errors,
// anything else is a server error.
func errorStatus(err error) int {
	var cityErr *forecast.UnknownCityError
	var selErr *selection.InvalidSelectionError
	var measErr *aqi.InvalidMeasurementError
	switch {
	case errors.As(err, &cityErr):
		return http.StatusNotFound
	case errors.As(err, &selErr), errors.As(err, &measErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.Any("error", err))
	} else {
		logger.Debug(msg, slog.Any("error", err))
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding json response", slog.Any("error", err))
	}
}

// modelFromQuery enters a fresh view and applies the city and pollutant
// query parameters to it.
func modelFromQuery(logger *slog.Logger, provider forecast.Provider, r *http.Request) (view.Model, error) {
	v, err := view.New(logger, provider)
	if err != nil {
		return view.Model{}, err
	}
	q := r.URL.Query()
	if err := v.Apply(q.Get("city"), q.Get("pollutant")); err != nil {
		return view.Model{}, err
	}
	return v.Model()
}
