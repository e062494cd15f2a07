package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/maltedev/manga-crawler-agents/internal/api"
	"github.com/maltedev/manga-crawler-agents/internal/config"
	"github.com/maltedev/manga-crawler-agents/internal/ratelimit"
	"github.com/maltedev/manga-crawler-agents/internal/sites/mangakatana"
	"github.com/maltedev/manga-crawler-agents/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	// The browser is launched lazily by the first request.
	agent, err := mangakatana.New(map[string]any{
		"timeoutMs": cfg.Agent.Timeout.Milliseconds(),
		"userAgent": cfg.Agent.UserAgent,
	}, mangakatana.WithHeadless(cfg.Agent.Headless), mangakatana.WithLogger(log))
	if err != nil {
		log.Error("failed to create agent", "error", err)
		os.Exit(1)
	}
	defer agent.Close()

	limiter := ratelimit.NewAdaptiveRateLimiter(cfg.RateLimit.Min, cfg.RateLimit.Max)
	handlers := api.NewHandlers(agent, limiter, log)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Agent.Timeout + 30*time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	handlers.Mount(r)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Agent.Timeout + 45*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	idle := make(chan struct{})
	go func() {
		defer close(idle)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("server starting", "port", cfg.Server.Port, "agent", agent.Name(), "base_url", agent.BaseURL().String())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server failed", "error", err)
		agent.Close()
		os.Exit(1)
	}

	<-idle
	log.Info("server stopped")
}
