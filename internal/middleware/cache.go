package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
)

// ResponseCache keeps successful GET responses of public endpoints in
// Redis. Entries are shared between callers, so it must only wrap routes
// whose output does not depend on the caller.
type ResponseCache struct {
	cfg    config.CacheConfig
	rdb    redis.Cmdable
	logger *log.Logger
}

func NewResponseCache(cfg config.CacheConfig, rdb redis.Cmdable, logger *log.Logger) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &ResponseCache{cfg: cfg, rdb: rdb, logger: logger}
}

func (rc *ResponseCache) enabled() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// recorder forwards the response to the client and keeps a copy of up to
// limit bytes. overflow is set once the body outgrows the limit.
type recorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.overflow {
		if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
			r.overflow = true
			r.buf.Reset()
		} else {
			r.buf.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

func (rc *ResponseCache) key(c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(c.Path() + "?" + r.URL.RawQuery + "#" + strings.Join(c.ParamValues(), "/")))
	return rc.cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// Middleware serves GET requests from the cache and stores 200 responses on
// a miss. X-Cache reports HIT or MISS.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if !rc.enabled() {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := rc.key(c)

			if raw, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if err := json.Unmarshal(raw, &cached); err == nil {
					h := c.Response().Header()
					for k, vals := range cached.Header {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						h[k] = vals
					}
					h.Set("X-Cache", "HIT")
					return c.Blob(cached.Status, h.Get(echo.HeaderContentType), cached.Body)
				}
			} else if err != redis.Nil {
				rc.warn("cache: get %s: %v", key, err)
			}

			rec := &recorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow {
				return nil
			}

			header := c.Response().Header().Clone()
			header.Del("X-Cache")
			payload, err := json.Marshal(cachedResponse{Status: rec.status, Header: header, Body: rec.buf.Bytes()})
			if err != nil {
				return nil
			}
			if err := rc.rdb.Set(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err(); err != nil {
				rc.warn("cache: set %s: %v", key, err)
			}
			return nil
		}
	}
}

// Invalidate drops every cached entry after a successful mutating request,
// so approving or creating a course is visible on the next listing.
func (rc *ResponseCache) Invalidate() echo.MiddlewareFunc {
	if !rc.enabled() {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if c.Request().Method == http.MethodGet || err != nil || c.Response().Status >= 300 {
				return err
			}
			if perr := rc.Purge(context.WithoutCancel(c.Request().Context())); perr != nil {
				rc.warn("cache: purge: %v", perr)
			}
			return nil
		}
	}
}

// Purge deletes all keys under the cache prefix.
func (rc *ResponseCache) Purge(ctx context.Context) error {
	iter := rc.rdb.Scan(ctx, 0, rc.cfg.Prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rc.rdb.Del(ctx, keys...).Err()
}

func (rc *ResponseCache) warn(format string, args ...interface{}) {
	if rc.logger != nil {
		rc.logger.Warnf(format, args...)
	}
}
