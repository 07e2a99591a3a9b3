package www

import (
	"log/slog"
	"net/http"

	"github.com/angas/aircast-go/forecast"
	"github.com/angas/aircast-go/view"
	"github.com/angas/aircast-go/www/chartjs"
)

type forecastPage struct {
	view.Model
	Charts []chartjs.Chart
}

func NewForecastHandler(logger *slog.Logger, provider forecast.Provider, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := modelFromQuery(logger, provider, r)
		if err != nil {
			writeError(w, logger, "handling forecast request", err)
			return
		}

		if r.URL.Query().Get("format") == "json" {
			writeJSON(w, logger, m)
			return
		}

		page := forecastPage{Model: m, Charts: Charts(m)}
		w.Header().Set("Content-Type", "text/html")
		if err := tm.ExecuteToWriter("forecast.html", page, w); err != nil {
			logger.Error("handling forecast request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
