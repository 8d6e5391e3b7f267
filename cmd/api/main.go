package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/kirillkom/saarthi-qa-gateway/internal/adapters/http"
	"github.com/kirillkom/saarthi-qa-gateway/internal/bootstrap"
	"github.com/kirillkom/saarthi-qa-gateway/internal/config"
	"github.com/kirillkom/saarthi-qa-gateway/internal/observability/logging"
)

func main() {
	envErr := godotenv.Load(".env")
	cfg := config.Load()

	logger := logging.NewJSONLogger(bootstrap.ServiceName, cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("api_failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is done. Every return path releases the app.
func run(ctx context.Context, cfg config.Config) error {
	doc, err := httpadapter.LoadOpenAPI(ctx)
	if err != nil {
		return fmt.Errorf("load openapi: %w", err)
	}

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, app.QueryUC, app.QueryUC, httpadapter.RouterOptions{
		Metrics: app.Metrics,
		OpenAPI: doc,
	}).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.EnhancerTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("api_listening",
			"port", cfg.APIPort,
			"retriever", cfg.RetrieverBackend,
			"enhancer_provider", app.Capability.Provider,
			"enhancer_available", app.Capability.Ready,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("api_shutdown_failed", "error", err)
	}
	return nil
}
