package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/car-rental-reservation/internal/config"
)

const (
	idemPending    = "PROCESSING"
	idemLockTTL    = 30 * time.Second
	maxIdemBodyLen = 1 << 20
)

// Idempotency replays the stored response of a request that repeats an
// Idempotency-Key already seen for the same caller, method and path.
// While the first request is running, repeats get 409.  A repeat whose
// body differs from the original gets 422.  Server errors are not
// stored, so the client may retry them.
func Idempotency(cfg config.IdempotencyConfig, rdb *redis.Client, log logrus.FieldLogger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	methods := make(map[string]bool, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods[strings.ToUpper(m)] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			idemKey := strings.TrimSpace(req.Header.Get(cfg.Header))
			if idemKey == "" || !methods[req.Method] {
				return next(c)
			}

			body, err := io.ReadAll(io.LimitReader(req.Body, maxIdemBodyLen))
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable request body"})
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			sum := sha256.Sum256(body)
			fingerprint := hex.EncodeToString(sum[:])

			ctx := req.Context()
			key := fmt.Sprintf("%s:%s:%s:%s:%s", cfg.Prefix, subject(c), req.Method, req.URL.Path, idemKey)

			acquired, err := rdb.SetNX(ctx, key, idemPending, idemLockTTL).Result()
			if err != nil {
				log.WithError(err).Warn("idempotency: redis unavailable, running request unguarded")
				return next(c)
			}
			if !acquired {
				return replayStored(ctx, c, rdb, key, fingerprint)
			}

			cw := newCaptureWriter(c.Response().Writer, 0)
			c.Response().Writer = cw
			if err := next(c); err != nil {
				// the error handler writes the response after we return
				_ = rdb.Del(context.Background(), key).Err()
				return err
			}
			if cw.status >= http.StatusInternalServerError {
				_ = rdb.Del(context.Background(), key).Err()
				return nil
			}
			stored := snapshot(cw.status, c.Response().Header(), cw.buf.Bytes())
			stored.Fingerprint = fingerprint
			payload, err := stored.encode()
			if err == nil {
				err = rdb.Set(context.Background(), key, payload, cfg.TTL).Err()
			}
			if err != nil {
				log.WithError(err).WithField("key", idemKey).Warn("idempotency: store response failed")
				_ = rdb.Del(context.Background(), key).Err()
			}
			return nil
		}
	}
}

func replayStored(ctx context.Context, c echo.Context, rdb *redis.Client, key, fingerprint string) error {
	val, err := rdb.Get(ctx, key).Bytes()
	if err != nil || string(val) == idemPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "a request with this idempotency key is in progress"})
	}
	stored, ok := decodeStored(val)
	if !ok {
		return c.JSON(http.StatusConflict, echo.Map{"error": "a request with this idempotency key is in progress"})
	}
	if stored.Fingerprint != fingerprint {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "idempotency key reused with a different request body"})
	}
	c.Response().Header().Set("X-Idempotent-Replay", "true")
	return stored.replay(c.Response())
}
