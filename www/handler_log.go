package www

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/angas/aircast-go/logging"
)

const (
	defaultLogPageSize = 25
	maxLogPageSize     = 200
	// (maxLogPage-1)*maxLogPageSize stays far below any int overflow.
	maxLogPage = 1_000_000
)

type LogReader interface {
	GetLogEntries(ctx context.Context, minLvl slog.Level, page, pageSize int) ([]logging.LogEntry, error)
}

func NewLogHandler(logger *slog.Logger, db LogReader, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")

		page := intOrDefault(r.URL, "page", 0)
		if page < 1 {
			if err := tm.ExecuteToWriter("log.html", nil, w); err != nil {
				logger.Error("handling log request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		if page > maxLogPage {
			http.Error(w, fmt.Sprintf("page must be at most %d", maxLogPage), http.StatusBadRequest)
			return
		}

		pageSize := intOrDefault(r.URL, "pageSize", defaultLogPageSize)
		if pageSize < 1 {
			pageSize = defaultLogPageSize
		}
		pageSize = min(pageSize, maxLogPageSize)
		minLevel := slog.LevelDebug
		if lvl := r.URL.Query().Get("level"); lvl != "" {
			minLevel = logging.LevelFromString(&lvl)
		}

		e, err := db.GetLogEntries(r.Context(), minLevel, page, pageSize)
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		data := struct {
			Page     int
			PageSize int
			Entries  []logging.LogEntry
		}{
			Page:     page + 1,
			PageSize: pageSize,
			Entries:  e,
		}

		if err := tm.ExecuteToWriter("log_entries.html", data, w); err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
