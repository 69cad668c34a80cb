// Package api RowDB REST API
//
// @title           RowDB REST API
// @version         1.0.0
// @description     REST API for RowDB, a typed row-encoding table store.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Routes builds the router with all routes configured
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Tables
		r.Get("/tables", s.metrics.InstrumentHandler("GET", "/api/v1/tables", s.handleListTables))
		r.Post("/tables", s.metrics.InstrumentHandler("POST", "/api/v1/tables", s.handleCreateTable))
		r.Get("/tables/{name}", s.metrics.InstrumentHandler("GET", "/api/v1/tables/{name}", s.handleGetTable))
		r.Delete("/tables/{name}", s.metrics.InstrumentHandler("DELETE", "/api/v1/tables/{name}", s.handleDropTable))
		r.Post("/tables/{name}/flush", s.metrics.InstrumentHandler("POST", "/api/v1/tables/{name}/flush", s.handleFlushTable))

		// Rows
		r.Post("/tables/{name}/rows", s.metrics.InstrumentHandler("POST", "/api/v1/tables/{name}/rows", s.handleInsertRow))
		r.Get("/tables/{name}/rows/{index}", s.metrics.InstrumentHandler("GET", "/api/v1/tables/{name}/rows/{index}", s.handleGetRow))
	})

	return r
}

// StartServer serves the API until ctx is cancelled. On shutdown every table
// with unsaved rows is flushed to the store.
func StartServer(ctx context.Context, store TableStore, config ServerConfig, log *logrus.Entry) error {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	server := NewServer(store, config, NewMetrics(), log)

	addr := net.JoinHostPort(config.Bind, strconv.Itoa(config.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("starting RowDB REST API server")
		log.Infof("metrics available at http://%s/metrics", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("server shutdown did not complete")
		}
	}

	if err := server.Flush(); err != nil {
		return fmt.Errorf("failed to flush tables: %w", err)
	}
	return nil
}
