package middleware

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/car-rental-reservation/internal/config"
)

// cacheKey keeps the request path readable, so every cached variant of
// one path can be dropped together, and hashes the query.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte("route:" + c.Path() + ":q:" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%s:%x", cfg.Prefix, r.URL.Path, sum[:])
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// pathPattern matches the keys cacheKey produces for path.
func pathPattern(cfg config.CacheConfig, path string) string {
	return cfg.Prefix + ":" + globEscaper.Replace(path) + ":*"
}

// CacheInvalidator drops cached responses after writes that change them.
type CacheInvalidator struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewCacheInvalidator returns an invalidator for the keys written by
// NewRedisCache.  Without Redis, or with caching off, it does nothing.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client) *CacheInvalidator {
	return &CacheInvalidator{cfg: cfg, rdb: rdb}
}

// InvalidatePath deletes every cached response for path, whatever its
// query string.
func (i *CacheInvalidator) InvalidatePath(ctx context.Context, path string) error {
	if i == nil || i.rdb == nil || !i.cfg.Enabled {
		return nil
	}
	iter := i.rdb.Scan(ctx, 0, pathPattern(i.cfg, path), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", path, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := i.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", path, err)
	}
	return nil
}

// NewRedisCache caches successful GET responses, headers included, for
// cfg.TTL.  Responses are marked X-Cache HIT or MISS.  Without Redis it is
// a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log logrus.FieldLogger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg, c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if stored, ok := decodeStored(bs); ok {
					c.Response().Header().Set("X-Cache", "HIT")
					return stored.replay(c.Response())
				}
			} else if err != redis.Nil {
				log.WithError(err).Warn("cache: redis get failed")
			}

			cw := newCaptureWriter(c.Response().Writer, cfg.MaxBodyBytes)
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated {
				return nil
			}
			payload, err := snapshot(cw.status, c.Response().Header(), cw.buf.Bytes()).encode()
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.Background(), key, payload, cfg.TTL).Err(); err != nil {
				log.WithError(err).Warn("cache: redis set failed")
			}
			return nil
		}
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
