package www

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/angas/aircast-go/config"
	"github.com/angas/aircast-go/forecast"
	ws "github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

type Server struct {
	logger   *slog.Logger
	config   config.AppConfigApi
	provider forecast.Provider
	logs     LogReader
	hub      *Hub
	tm       *TemplateManager
	mux      *http.ServeMux
}

//go:embed static
var embeddedStaticDir embed.FS

// NewServer wires all routes. The websocket hub runs until ctx is done.
func NewServer(ctx context.Context, logger *slog.Logger, config config.AppConfigApi, provider forecast.Provider, logs LogReader) (*Server, error) {
	tm, err := NewTemplateManager(logger, config.WwwDir)
	if err != nil {
		return nil, fmt.Errorf("template manager initialization error: %w", err)
	}

	s := &Server{
		logger:   logger,
		config:   config,
		provider: provider,
		logs:     logs,
		hub:      NewHub(logger.With(slog.String("handler", "ws"))),
		tm:       tm,
		mux:      http.NewServeMux(),
	}

	go s.hub.Run(ctx)
	tm.OnReload(func() {
		s.hub.Publish(Message{Type: MessageReload})
	})

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	s.mux.Handle("GET /", staticFilesHandler(config.WwwDir))

	s.mux.Handle("GET /forecast", logReqMW(NewForecastHandler(
		logger.With(slog.String("handler", "forecast")),
		s.provider,
		s.tm)))

	s.mux.Handle("GET /chart", logReqMW(NewChartHandler(
		logger.With(slog.String("handler", "chart")),
		s.provider)))

	apiLogger := logger.With(slog.String("handler", "api"))
	s.mux.Handle("GET /api/cities", logReqMW(NewCitiesHandler(apiLogger, s.provider)))
	s.mux.Handle("GET /api/forecast/{city}/hourly", logReqMW(NewHourlySeriesHandler(apiLogger, s.provider)))
	s.mux.Handle("GET /api/forecast/{city}/weekly", logReqMW(NewWeeklySeriesHandler(apiLogger, s.provider)))
	s.mux.Handle("GET /api/aqi", logReqMW(NewBandsHandler(apiLogger)))
	s.mux.Handle("GET /api/aqi/{value}", logReqMW(NewClassifyHandler(apiLogger)))

	s.mux.Handle("GET /log", logReqMW(NewLogHandler(
		logger.With(slog.String("handler", "log")),
		s.logs,
		s.tm)))

	s.mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		limiter := rate.NewLimiter(rate.Limit(s.config.GetWsCommandRate()), s.config.GetWsCommandBurst())
		client, err := NewClient(s.hub, s.provider, limiter, w, r)
		if err != nil {
			var upgradeErr ws.HandshakeError
			if errors.As(err, &upgradeErr) {
				s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
				return
			}
			writeError(w, s.logger, "new websocket client failed", err)
			return
		}
		if !s.hub.Join(client) {
			client.conn.Close()
			return
		}
		client.logger.Debug("websocket client connected", slog.String("userAgent", r.Header.Get("User-Agent")))
		go client.WritePump()
		client.ReadPump()
	})

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting server...", "port", s.config.Port)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	}
}

func staticFilesHandler(extDir *string) http.Handler {
	if extDir != nil && *extDir != "" {
		staticDir := path.Join(*extDir, "static")
		if _, err := os.Stat(staticDir); err == nil {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
