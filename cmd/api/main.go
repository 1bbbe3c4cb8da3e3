package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "company_reviews/internal/adapters/http_server"
	"company_reviews/internal/adapters/jwtauth"
	"company_reviews/internal/adapters/observability"
	redisad "company_reviews/internal/adapters/redis"
	"company_reviews/internal/app"
	"company_reviews/internal/domain"
	"company_reviews/internal/shared"
	mysqlrepo "company_reviews/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	svc := app.NewReviewService(repo)
	auth := authenticator(ctx, cfg)

	// http
	srv := server.New(server.Options{
		Timeout:    cfg.RequestTimeout,
		RateRPS:    cfg.RateRPS,
		RateBurst:  cfg.RateBurst,
		Auth:       auth,
		TrustProxy: cfg.TrustProxy,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Svc: svc, MaxBody: cfg.MaxBodyBytes})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("auth", cfg.AuthMode).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

func authenticator(ctx context.Context, cfg shared.Config) domain.Authenticator {
	if cfg.AuthMode == "jwt" {
		a, err := jwtauth.New(cfg.JWTSecret, cfg.JWTIssuer, 0)
		if err != nil {
			log.Fatal().Err(err).Msg("jwt authenticator init failed")
		}
		return a
	}
	sessions := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := sessions.Ping(ctx); err != nil {
		// sessions are checked per request; a cold redis only fails those
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}
	return sessions
}
