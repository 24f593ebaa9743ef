// cmd/extraction-server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/config"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/logger"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/observability"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/extraction"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/genai"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/prompts"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/server"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting extraction server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	defer obs.Shutdown()

	registry := prompts.NewRegistry(cfg.Prompts.Dir, log)
	if err := registry.Preload(); err != nil {
		zapLog.Fatal("prompt templates failed to load", zap.Error(err))
	}
	zapLog.Info("Prompt templates loaded", zap.String("dir", cfg.Prompts.Dir))

	composer := prompts.NewComposer(registry)
	generator := genai.NewClient(cfg.GenAI, log)
	dispatcher := extraction.NewDispatcher(composer, generator, log, obs)

	handler := server.NewHandler(dispatcher, log)
	srv := server.New(cfg.Server, handler, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, draining requests...", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			zapLog.Error("shutdown did not complete cleanly", zap.Error(err))
		}
	}

	zapLog.Info("Extraction server stopped")
}
