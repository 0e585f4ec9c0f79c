package config

// Redis backs distributed rate limiting and HTTP response caching. If the
// server cannot be reached during startup, NewRedisClient returns nil and
// callers degrade gracefully by disabling both.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client and pings it with a short
// timeout. The returned client is nil when the ping fails.
func NewRedisClient(cfg RedisConfig, logger *log.Logger) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnf("redis unavailable at %s, rate limiting and caching disabled: %v", cfg.Addr, err)
		_ = client.Close()
		return nil
	}
	return client
}
