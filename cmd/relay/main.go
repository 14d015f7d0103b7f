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

	"github.com/uset82/My-Football-Game/internal/config"
	"github.com/uset82/My-Football-Game/internal/middleware"
	"github.com/uset82/My-Football-Game/internal/relay"
)

// securityHeaders wraps a handler with common security response headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func main() {
	// Log to stdout so hosting platforms don't flag every line as an error
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	config.LoadEnv()

	cfg := config.LoadRelay()

	limiter := middleware.NewIPRateLimiter(cfg.Limits)
	defer limiter.Close()

	hub := relay.NewHub(limiter, cfg.Origins)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	mux.HandleFunc("/stats", hub.StatsHandler)
	mux.HandleFunc("/", relay.Health)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           securityHeaders(mux),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		hub.Shutdown()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			slog.Warn("shutdown incomplete", "err", err)
			server.Close()
		}
	}()

	slog.Info("football relay starting", "port", cfg.Port, "origins", cfg.Origins,
		"conns_per_ip", cfg.Limits.ConnsPerIP, "msgs_per_window", cfg.Limits.Messages, "window", cfg.Limits.Window)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
