package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/app"
	"github.com/mauv0809/quiniela-client/internal/config"
	server "github.com/mauv0809/quiniela-client/internal/http"
	"github.com/mauv0809/quiniela-client/internal/metrics"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %s", err)
	}
	cfg.SetupLogging()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	a, err := app.New(cfg, metricsSvc)
	if err != nil {
		log.Fatalf("Failed to initialize client: %s", err)
	}
	defer func() {
		log.Info("Closing session database")
		a.Close()
	}()

	if _, err := a.Auth.CurrentUser(); err != nil {
		log.Warn("No user logged in; only the event and rankings feeds will have data. Run `quiniela login` first.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Watch(ctx); err != nil {
		log.Fatalf("Failed to start feeds: %s", err)
	}

	s := server.NewServer(a, metricsHandler)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Status server started", "addr", cfg.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server error", "error", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	a.StopWatching()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	} else {
		log.Info("Server gracefully stopped")
	}

	log.Info("Watcher shutting down")
}
