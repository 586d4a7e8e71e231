package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/automaton-a11y/internal/application"
	appaudit "github.com/bryanwahyu/automaton-a11y/internal/application/audit"
	"github.com/bryanwahyu/automaton-a11y/internal/bootstrap"
	"github.com/bryanwahyu/automaton-a11y/internal/config"
	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
	"github.com/bryanwahyu/automaton-a11y/internal/infra/httpserver"
	"github.com/bryanwahyu/automaton-a11y/internal/middleware"
)

func main() {
	cfg, err := config.Load(config.ResolvePath(""))
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, db, err := bootstrap.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	svc := appaudit.NewService(bootstrap.NewAIClient(cfg), cfg.HasCredential(), log.Writer())
	if !cfg.HasCredential() {
		log.Printf("MODELS_TOKEN not set, serving mock analyses")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newHandler(ctx, cfg, svc, repo, db),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Models.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func newHandler(ctx context.Context, cfg *config.Config, svc *appaudit.Service, repo domain.Repository, db *sql.DB) http.Handler {
	checkers := map[string]middleware.HealthChecker{}
	if db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}
	mode := "mock"
	if svc.Remote {
		mode = "remote"
	}

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Server.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	mux.Use(middleware.APIKeyAuth(cfg.Server.APIKeys))
	if cfg.Server.RateLimit.Capacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(ctx, cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRate))
	}

	mux.Get("/health", middleware.HealthHandler(mode, checkers))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(svc, repo, application.SystemClock{}, cfg.Server.MaxBodyBytes))
	return mux
}
