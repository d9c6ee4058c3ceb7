package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// UserLookup resolves the member an event belongs to.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// CarLookup resolves the reserved car.
type CarLookup interface {
	GetByID(ctx context.Context, id uint64) (model.Car, error)
}

// LocationLookup resolves pickup and dropoff branches.
type LocationLookup interface {
	GetByID(ctx context.Context, id uint64) (model.Location, error)
}

// Settings control email delivery.
type Settings struct {
	Enabled       bool
	SenderEmail   string
	SenderName    string
	SubjectPrefix string
}

// NotificationHandler turns reservation events into emails.
type NotificationHandler struct {
	Users     UserLookup
	Cars      CarLookup
	Locations LocationLookup
	Mailer    Mailer
	Settings  Settings
	Log       logrus.FieldLogger
}

// Handle processes one delivery body.  Skipped notifications are not
// errors; only malformed payloads and delivery failures are.
func (h *NotificationHandler) Handle(ctx context.Context, body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	log := h.Log.WithFields(logrus.Fields{
		"event":              ev.Event,
		"reservation_id":     ev.ReservationID,
		"reservation_number": ev.ReservationNumber,
	})

	if !h.Settings.Enabled {
		log.WithField("reason", "disabled").Info("notification skipped")
		return nil
	}
	if h.Settings.SenderEmail == "" {
		log.WithField("reason", "sender address not configured").Info("notification skipped")
		return nil
	}
	member, err := h.Users.GetByID(ctx, ev.MemberID)
	if err != nil {
		return fmt.Errorf("load member %d: %w", ev.MemberID, err)
	}
	if member.Email == "" {
		log.WithField("reason", "member has no email").Info("notification skipped")
		return nil
	}

	msg := Message{
		FromEmail: h.Settings.SenderEmail,
		FromName:  h.Settings.SenderName,
		To:        member.Email,
		Subject:   Subject(h.Settings.SubjectPrefix, ev.Event),
		Text:      Body(ev, h.details(ctx, ev, log)),
	}
	if err := h.Mailer.Send(ctx, msg); err != nil {
		return err
	}
	log.WithField("to", member.Email).Info("notification sent")
	return nil
}

// details resolves descriptions; a missing entity leaves its field empty.
func (h *NotificationHandler) details(ctx context.Context, ev ReservationEvent, log logrus.FieldLogger) Details {
	var d Details
	if car, err := h.Cars.GetByID(ctx, ev.CarID); err == nil {
		d.Car = car.Describe()
	} else {
		log.WithError(err).Warn("notification: car lookup failed")
	}
	if loc, err := h.Locations.GetByID(ctx, ev.PickupLocationID); err == nil {
		d.Pickup = loc.Describe()
	} else {
		log.WithError(err).Warn("notification: pickup lookup failed")
	}
	if loc, err := h.Locations.GetByID(ctx, ev.DropoffLocationID); err == nil {
		d.Dropoff = loc.Describe()
	} else {
		log.WithError(err).Warn("notification: dropoff lookup failed")
	}
	return d
}

// StartNotificationConsumer connects to RabbitMQ, declares the durable
// reservation.events queue and feeds deliveries to h.  It reconnects with
// exponential backoff and returns only when ctx is cancelled.
func StartNotificationConsumer(ctx context.Context, url string, h *NotificationHandler) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			h.Log.WithError(err).Warnf("notification-consumer: dial failed; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, h)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		h.Log.WithError(err).Warn("notification-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, h *NotificationHandler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		h.Log.WithError(err).Warn("notification-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(ReservationEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ReservationEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := h.Handle(ctx, d.Body); err != nil {
				h.Log.WithError(err).Error("notification-consumer: handle message failed")
				// reject without requeue to avoid tight loops
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
