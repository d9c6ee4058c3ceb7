package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/car-rental-reservation/internal/config"
	"github.com/iliyamo/car-rental-reservation/internal/database"
	"github.com/iliyamo/car-rental-reservation/internal/handler"
	"github.com/iliyamo/car-rental-reservation/internal/logging"
	"github.com/iliyamo/car-rental-reservation/internal/middleware"
	"github.com/iliyamo/car-rental-reservation/internal/repository"
	"github.com/iliyamo/car-rental-reservation/internal/router"
	"github.com/iliyamo/car-rental-reservation/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logging.New(cfg.LogLevel, cfg.LogFormat)
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

// stores bundles the MySQL repositories.
type stores struct {
	users        *repository.UserRepo
	cars         *repository.CarRepo
	locations    *repository.LocationRepo
	reservations *repository.ReservationRepo
	services     *repository.ServiceRepo
	equipment    *repository.EquipmentRepo
}

func newStores(db *sql.DB) stores {
	return stores{
		users:        repository.NewUserRepo(db),
		cars:         repository.NewCarRepo(db),
		locations:    repository.NewLocationRepo(db),
		reservations: repository.NewReservationRepo(db),
		services:     repository.NewServiceRepo(db),
		equipment:    repository.NewEquipmentRepo(db),
	}
}

func serve(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	var rdb *redis.Client
	if client, err := config.NewRedisClient(ctx, cfg.Redis); err != nil {
		log.WithError(err).Warn("redis unavailable; rate limiting, caching and idempotency disabled")
	} else {
		rdb = client
		defer rdb.Close()
	}

	st := newStores(db)
	svc := service.NewReservationService(
		service.Stores{
			Members:      st.users,
			Cars:         st.cars,
			Locations:    st.locations,
			Services:     st.services,
			Equipment:    st.equipment,
			Reservations: st.reservations,
		},
		database.NewTxManager(db),
		service.NewQueueNotifier(cfg.RabbitURL),
		log,
		service.WithMetrics(service.NewMetrics(prometheus.DefaultRegisterer)),
		service.WithAvailabilityCache(router.AvailabilityCache{Cache: middleware.NewCacheInvalidator(cfg.Cache, rdb)}),
	)

	mw := router.Middlewares{
		RateLimit:   middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
		Cache:       middleware.NewRedisCache(cfg.Cache, rdb, log),
		Idempotency: middleware.Idempotency(cfg.Idempotency, rdb, log),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			}).Info("request")
			return nil
		},
	}))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, st.users, log), cfg.JWTSecret, mw)
	router.RegisterPublic(e, handler.NewAvailabilityHandler(svc, log), mw)
	router.RegisterMember(e, handler.NewReservationHandler(svc, log), cfg.JWTSecret, mw)
	router.RegisterAdmin(e, handler.NewAdminReservationHandler(svc, log), cfg.JWTSecret, mw)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
