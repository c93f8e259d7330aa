// Package api exposes replay conversion and the replay library over HTTP.
//
// Routes under /api/v1 require the X-API-Key header when an API key is
// configured:
//
//	GET    /api/v1/health
//	POST   /api/v1/replays/convert?hint=slc   body: replay, returns slc3 bytes
//	POST   /api/v1/replays/info?hint=slc      body: replay, returns a JSON summary
//	POST   /api/v1/library?name=NAME&hint=slc body: replay, stores it as slc3
//	GET    /api/v1/library
//	GET    /api/v1/library/{id}
//	DELETE /api/v1/library/{id}
//
// Prometheus metrics are served unauthenticated at /metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/siliconv/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the HTTP handler for s. gatherer backs the /metrics route.
func NewRouter(s *Server, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger.Log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// unprotected for scraping
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey, s.metrics))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Post("/replays/convert", s.metrics.InstrumentHandler("POST", "/api/v1/replays/convert", s.handleConvert))
		r.Post("/replays/info", s.metrics.InstrumentHandler("POST", "/api/v1/replays/info", s.handleInfo))

		r.Post("/library", s.metrics.InstrumentHandler("POST", "/api/v1/library", s.handleAddToLibrary))
		r.Get("/library", s.metrics.InstrumentHandler("GET", "/api/v1/library", s.handleListLibrary))
		r.Get("/library/{id}", s.metrics.InstrumentHandler("GET", "/api/v1/library/{id}", s.handleGetFromLibrary))
		r.Delete("/library/{id}", s.metrics.InstrumentHandler("DELETE", "/api/v1/library/{id}", s.handleDeleteFromLibrary))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down gracefully
func StartServer(ctx context.Context, library ILibrary, config ServerConfig) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	server := NewServer(library, config, NewMetrics(registry))
	server.refreshLibraryGauge()

	httpServer := &http.Server{
		Addr:              config.Addr,
		Handler:           NewRouter(server, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("starting siliconv API server on %s", config.Addr)
		logger.Log.Infof("metrics available at http://%s/metrics", config.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
