// Command driveorient keeps a Google Drive media preview oriented: it
// drives a Chrome tab over CDP, injects rotate/flip controls, and persists
// the chosen orientation per file. A local HTTP API and an optional MCP
// stdio transport expose the same controls to scripts and agents.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"driveorient/rotator"
)

func main() {
	configPath := env("CONFIG", "")
	logLevel := env("LOG_LEVEL", "info")
	mcpTransport := env("MCP_TRANSPORT", "")

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// Logs go to stderr: stdout belongs to the MCP transport in stdio mode.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := rotator.DefaultConfig()
	if configPath != "" {
		c, err := rotator.LoadConfig(configPath)
		if err != nil {
			slog.Error("load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = c
	}
	if v := os.Getenv("CHROME_REMOTE_URL"); v != "" {
		cfg.Browser.Remote = v
	}
	if v := os.Getenv("PAGE_URL"); v != "" {
		cfg.Page.URL = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.API.Addr = v
	}
	if v := env("HEADLESS", ""); v == "1" || v == "true" {
		cfg.Browser.Headless = true
	}

	st, err := rotator.OpenStore(cfg.DBPath)
	if err != nil {
		slog.Error("open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	drv, err := rotator.Attach(ctx, cfg, logger)
	if err != nil {
		slog.Error("attach browser", "error", err)
		os.Exit(1)
	}
	defer drv.Close()

	sess := rotator.New(cfg, drv, st, rotator.WithLogger(logger))

	sessErr := make(chan error, 1)
	go func() { sessErr <- sess.Run(ctx) }()

	// Local control/status API.
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	sess.RegisterHTTP(r)

	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		slog.Info("api listening", "addr", cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api server", "error", err)
			os.Exit(1)
		}
	}()

	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "driveorient",
			Version: "0.1.0",
		}, nil)
		sess.RegisterMCP(mcpSrv)
		go func() {
			slog.Info("mcp listening on stdio")
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("mcp server", "error", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-sessErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("session", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
