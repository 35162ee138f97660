package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-rod/rod"

	"github.com/promowatch/promowatch/api"
	"github.com/promowatch/promowatch/config"
	"github.com/promowatch/promowatch/engine"
	"github.com/promowatch/promowatch/probe"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("promowatch starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"sites", len(cfg.Sites),
	)

	// ── 3. Launch browser (optional capability) ─────────────────────
	// A launch failure is not fatal: the service degrades to HTTP-only
	// probing and render-dependent pages report unknown counts.
	var browser *rod.Browser
	var renderer engine.Renderer
	if cfg.Browser.Enabled {
		browser, err = engine.LaunchBrowser(cfg.Browser.Headless, cfg.Browser.NoSandbox, cfg.Browser.BrowserBin)
		if err != nil {
			slog.Warn("browser unavailable, probing degrades to HTTP only", "error", err)
		} else {
			renderer = engine.NewRodRenderer(browser, cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)
		}
	} else {
		slog.Info("rendering disabled by configuration")
	}

	// ── 4. Assemble the probing pipeline ────────────────────────────
	fetcher := engine.NewHTTPFetcher()
	metrics := probe.NewMetrics()
	prober := probe.New(cfg.Probe, cfg.Sites, fetcher, renderer, metrics)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(prober, cfg, metrics, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 10 seconds to complete; a running batch
	// check is cancelled through its request context.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	if browser != nil {
		if err := browser.Close(); err != nil {
			slog.Warn("browser close failed", "error", err)
		}
	}
	slog.Info("promowatch stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
