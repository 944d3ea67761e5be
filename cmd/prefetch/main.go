package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/adapters/recsvc"
	redisad "trip_planner/internal/adapters/redis"
	"trip_planner/internal/app"
	"trip_planner/internal/domain"
	"trip_planner/internal/shared"
	"trip_planner/internal/storage/memory"
	mysqlrepo "trip_planner/internal/storage/mysql"
)

// prefetch warms the per-user status label cache so the first recommendations
// view of a known traveller already shows a label.
func main() {
	ctx := context.Background()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	users := cfg.PrefetchUserList()
	log.Info().
		Str("base", cfg.RecsvcBase).
		Int("workers", cfg.Workers).
		Int("users", len(users)).
		Msg("prefetch starting")
	if len(users) == 0 {
		log.Warn().Msg("PREFETCH_USERS is empty; nothing to do")
		return
	}
	if cfg.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR is required; prefetch only fills the cache")
	}

	var repo domain.SessionRepository = memory.New()
	if cfg.StoreDriver == "mysql" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		defer db.Close()
		repo = mysqlrepo.New(db)
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RedisPrefix)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	client, err := recsvc.New(cfg.RecsvcBase, recsvc.Options{
		Attempts:        cfg.RecsvcAttempts,
		RPS:             cfg.RecsvcRPS,
		Timeout:         cfg.RecsvcTimeout,
		BreakerFailures: uint32(cfg.RecsvcBreakerFailures),
		BreakerCooldown: cfg.RecsvcBreakerCooldown,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize recommendation client")
	}
	status := app.NewStatusService(client, repo, cache, cfg.CacheTTL, cfg.StatusTimeout, cfg.Workers)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var failed int32

	for _, user := range users {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer sem.Release(1)

			label, err := status.Prefetch(ctx, name)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				log.Warn().Str("user", name).Err(err).Msg("prefetch failed")
				return
			}
			log.Info().Str("user", name).Str("label", label).Msg("prefetch ok")
		}(user)
	}

	wg.Wait()
	log.Info().Int("users", len(users)).Int32("failed", atomic.LoadInt32(&failed)).Msg("prefetch completed")
}
