// Doja API server
//
// Features:
// - MOTD feed with markdown rendering
// - DuckDuckGo instant-answer proxy
// - Flat file upload/download store with sanitized names
// - Sandboxed filesystem browser under the upload root
// - Terminal-like command interpreter (ls, cat, rm, touch, mv)
// - SSE change stream, Prometheus metrics, structured logging (zap)
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/debtcoder/debtcoder/internal/api"
	"github.com/debtcoder/debtcoder/internal/command"
	"github.com/debtcoder/debtcoder/internal/config"
	"github.com/debtcoder/debtcoder/internal/events"
	"github.com/debtcoder/debtcoder/internal/logging"
	"github.com/debtcoder/debtcoder/internal/metrics"
	"github.com/debtcoder/debtcoder/internal/motd"
	"github.com/debtcoder/debtcoder/internal/search"
	"github.com/debtcoder/debtcoder/internal/store"
	"github.com/debtcoder/debtcoder/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("Doja API server starting...",
		zap.String("listen", cfg.ListenAddr),
		zap.String("metrics", cfg.MetricsAddr),
		zap.String("upload_dir", cfg.UploadDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.New(cfg.UploadDir, cfg.MaxTextBytes)
	if err != nil {
		logging.Fatal("upload store init failed", zap.Error(err))
	}
	files, bytes := st.Usage()
	metrics.SetStoreUsage(files, bytes)
	logging.Info("upload store ready",
		zap.String("root", st.Root()),
		zap.Int("files", files),
		zap.Int64("bytes", bytes))

	motdManager, err := motd.New(cfg.MOTDPath, cfg.MaxTextBytes)
	if err != nil {
		logging.Fatal("MOTD init failed", zap.Error(err))
	}

	searchClient := search.New(cfg.SearchEndpoint)
	interp := command.New(st)
	broadcaster := events.NewBroadcaster()

	w, err := watcher.New(st, broadcaster)
	if err != nil {
		logging.Fatal("watcher init failed", zap.Error(err))
	}
	defer w.Close()
	w.Start(ctx)
	logging.Info("change watcher started")

	srv := api.NewServer(st, interp, searchClient, motdManager, broadcaster, cfg.Version, cfg.PublicURL, cfg.AccessKey)

	// Metrics on a separate listener
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metrics.Handler())
		logging.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := http.ListenAndServe(cfg.MetricsAddr, metricsMux); err != nil && err != http.ErrServerClosed {
			logging.Error("metrics server failed", zap.Error(err))
		}
	}()

	// No ReadTimeout: the SSE and websocket endpoints hold connections
	// open indefinitely.
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logging.Info("API server listening", zap.String("addr", cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("shutdown error", zap.Error(err))
	}
	logging.Info("server stopped")
}
