package router // package router defines how HTTP routes are registered for the API

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/car-rental-reservation/internal/handler"
	"github.com/iliyamo/car-rental-reservation/internal/middleware"
)

// Middlewares are the Redis backed middlewares; each is a pass-through
// when Redis is unavailable.
type Middlewares struct {
	RateLimit   echo.MiddlewareFunc
	Cache       echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

func (m Middlewares) withDefaults() Middlewares {
	noop := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if m.RateLimit == nil {
		m.RateLimit = noop
	}
	if m.Cache == nil {
		m.Cache = noop
	}
	if m.Idempotency == nil {
		m.Idempotency = noop
	}
	return m
}

// RegisterRoutes registers routes that do not require authentication:
// health, readiness and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers login under /v1/auth and the protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, mw Middlewares) {
	mw = mw.withDefaults()
	g := e.Group("/v1/auth", mw.RateLimit)
	g.POST("/login", a.Login)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), mw.RateLimit)
	auth.GET("/me", a.Me)
}

// CarAvailabilityPath is the request path of a car's availability lookup.
func CarAvailabilityPath(carID uint64) string {
	return fmt.Sprintf("/v1/cars/%d/availability", carID)
}

// AvailabilityCache drops a car's cached availability lookups.
type AvailabilityCache struct {
	Cache *middleware.CacheInvalidator
}

func (a AvailabilityCache) InvalidateCar(ctx context.Context, carID uint64) error {
	return a.Cache.InvalidatePath(ctx, CarAvailabilityPath(carID))
}

// RegisterPublic registers the guest availability lookup.  Responses are
// cached briefly in Redis and dropped when the car's reservations change
// (see AvailabilityCache).
func RegisterPublic(e *echo.Echo, h *handler.AvailabilityHandler, mw Middlewares) {
	mw = mw.withDefaults()
	g := e.Group("/v1", mw.RateLimit)
	g.GET("/cars/:id/availability", h.CarAvailability, mw.Cache)
}
