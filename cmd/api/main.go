package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "trip_planner/internal/adapters/http_server"
	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/adapters/recsvc"
	redisad "trip_planner/internal/adapters/redis"
	"trip_planner/internal/app"
	"trip_planner/internal/domain"
	"trip_planner/internal/shared"
	"trip_planner/internal/storage/memory"
	mysqlrepo "trip_planner/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	if cfg.MetricsAddr != cfg.HTTPAddr {
		observability.Serve(cfg.MetricsAddr, reg)
	}

	repo, closeRepo := openStore(cfg)
	defer closeRepo()

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RedisPrefix)
		if err := rc.Ping(context.Background()); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed; continuing, cache errors are ignored")
		}
		defer rc.Close()
		cache = rc
	}

	client, err := recsvc.New(cfg.RecsvcBase, recsvc.Options{
		Attempts:        cfg.RecsvcAttempts,
		RPS:             cfg.RecsvcRPS,
		Timeout:         cfg.RecsvcTimeout,
		BreakerFailures: uint32(cfg.RecsvcBreakerFailures),
		BreakerCooldown: cfg.RecsvcBreakerCooldown,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("recommendation client")
	}

	planner := app.NewPlannerService(repo)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	status := app.NewStatusService(client, repo, cache, cfg.CacheTTL, cfg.StatusTimeout, cfg.StatusMaxInFlight)

	// http
	srv := server.New(server.Options{
		Timeout:     cfg.HTTPTimeout,
		CORSOrigins: cfg.CORSOriginList(),
		RateLimit:   cfg.RateLimitRequests,
		RateWindow:  cfg.RateLimitWindow,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Planner: planner, Q: q, Status: status})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	status.Wait()
}

func openStore(cfg shared.Config) (domain.SessionRepository, func()) {
	if cfg.StoreDriver != "mysql" {
		log.Info().Msg("using in-memory session store")
		return memory.New(), func() {}
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db), func() { _ = db.Close() }
}
