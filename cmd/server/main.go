package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/app"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/jobs"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/middleware"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/queue"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/router"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger("wis2")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger, true)
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}
	defer a.Close()

	// Redis is optional; without it the limiter and the cache pass through.
	var (
		limiter *middleware.RateLimiter
		cache   *middleware.ResponseCache
	)
	if rdb := config.NewRedisClient(cfg.Redis, logger); rdb != nil {
		defer rdb.Close()
		limiter = middleware.NewRateLimiter(cfg.RateLimit, redis.Scripter(rdb), cfg.NewLogger("ratelimit"))
		cache = middleware.NewResponseCache(cfg.Cache, rdb, cfg.NewLogger("cache"))
	}

	if cfg.QueueEnabled {
		go queue.NewConsumer(cfg.RabbitMQURL, cfg.NotificationLogPath, cfg.NewLogger("notification-consumer")).Run(ctx)
	}
	jobs.NewTokenSweep(a.Services.Auth, cfg.SweepHour, cfg.SweepMinute, cfg.NewLogger("token-sweep")).Start(ctx)

	e := router.New(router.Deps{
		Cfg:      cfg,
		Services: a.Services,
		Limiter:  limiter,
		Cache:    cache,
		LogLevel: cfg.Level(),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
