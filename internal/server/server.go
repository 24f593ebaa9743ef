package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/config"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/logger"
)

// Server owns the HTTP listener lifecycle.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

func New(cfg config.ServerConfig, handler *Handler, log logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/extract", handler.Extract)
	mux.HandleFunc("/healthz", handler.Health)
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      mux,
			ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
			WriteTimeout: config.GetDuration(cfg.WriteTimeout),
		},
		logger: log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
}

// ListenAndServe blocks until the listener stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down", nil)
	return s.httpServer.Shutdown(ctx)
}
