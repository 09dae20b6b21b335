package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civreply_server/adapter/in/http"
	"civreply_server/adapter/in/worker"
	"civreply_server/config"
	"civreply_server/internal/bootstrap"
	"civreply_server/pkg/logger"

	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	// Initialize logger early
	logger.Init(logger.Config{
		Level:   logger.LevelInfo,
		Service: "civreply",
	})

	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	mode := flag.String("mode", "", "Run mode: api, worker, all (default from MODE env)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if !cfg.RunAPI() && !cfg.RunWorker() {
		logger.Fatal("Unknown mode: %s", cfg.Mode)
	}

	if cfg.IsDevelopment() {
		logger.Init(logger.Config{
			Level:   logger.LevelDebug,
			Service: "civreply",
		})
	}

	deps, cleanup, err := bootstrap.NewDependencies(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies: %v", err)
	}
	defer cleanup()

	var w *worker.AutoreplyWorker
	if cfg.RunWorker() {
		w = bootstrap.NewWorker(cfg, deps)
		w.Start()
	}

	if cfg.RunAPI() {
		var poller http.Poller
		if w != nil {
			poller = w
		}
		runAPI(cfg, deps, poller, w)
		return
	}

	// Worker-only mode: block until signalled.
	waitForSignal()
	stopWorker(w)
}

func runAPI(cfg *config.Config, deps *bootstrap.Dependencies, poller http.Poller, w *worker.AutoreplyWorker) {
	app := bootstrap.NewAPI(cfg, deps, poller)

	// Graceful shutdown with timeout
	go func() {
		waitForSignal()
		logger.Info("Shutting down (timeout: %v)...", shutdownTimeout)

		if w != nil {
			stopWorker(w)
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- app.Shutdown()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Error("Error shutting down: %v", err)
			} else {
				logger.Info("API server shut down gracefully")
			}
		case <-ctx.Done():
			logger.Warn("API shutdown timed out, forcing exit")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}

func stopWorker(w *worker.AutoreplyWorker) {
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Worker shut down gracefully")
	case <-time.After(shutdownTimeout):
		logger.Warn("Worker shutdown timed out, forcing exit")
	}
}
