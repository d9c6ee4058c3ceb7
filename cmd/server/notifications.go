package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/car-rental-reservation/internal/config"
	"github.com/iliyamo/car-rental-reservation/internal/database"
	"github.com/iliyamo/car-rental-reservation/internal/logging"
	"github.com/iliyamo/car-rental-reservation/internal/queue"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Consume reservation events and send notification emails",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logging.New(cfg.LogLevel, cfg.LogFormat)

		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return err
		}
		defer db.Close()
		st := newStores(db)

		settings := queue.Settings{
			Enabled:       cfg.Notification.Enabled,
			SenderEmail:   cfg.Notification.From,
			SenderName:    cfg.Notification.FromName,
			SubjectPrefix: cfg.Notification.SubjectPrefix,
		}
		var mailer queue.Mailer
		if settings.Enabled {
			m, err := queue.NewMailjetMailer(cfg.Notification.MailjetAPIKey, cfg.Notification.MailjetSecretKey)
			if err != nil {
				return err
			}
			mailer = m
		}

		h := &queue.NotificationHandler{
			Users:     st.users,
			Cars:      st.cars,
			Locations: st.locations,
			Mailer:    mailer,
			Settings:  settings,
			Log:       log,
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log.WithField("queue", queue.ReservationEventsQueue).Info("notification consumer started")
		if err := queue.StartNotificationConsumer(ctx, cfg.RabbitURL, h); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
