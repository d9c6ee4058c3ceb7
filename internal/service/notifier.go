package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/car-rental-reservation/internal/model"
	"github.com/iliyamo/car-rental-reservation/internal/queue"
)

// QueueNotifier publishes reservation events to RabbitMQ.  Each publish
// dials its own connection.
type QueueNotifier struct {
	url   string
	queue string
	now   func() time.Time
}

// NewQueueNotifier publishes to the reservation.events queue at url.
func NewQueueNotifier(url string) *QueueNotifier {
	return &QueueNotifier{url: url, queue: queue.ReservationEventsQueue, now: time.Now}
}

// NewReservationEvent builds the wire payload for res.
func NewReservationEvent(res model.Reservation, eventType string, at time.Time) queue.ReservationEvent {
	return queue.ReservationEvent{
		Event:             eventType,
		ReservationID:     res.ID,
		ReservationNumber: res.ReservationNumber,
		MemberID:          res.MemberID,
		CarID:             res.CarID,
		PickupLocationID:  res.PickupLocationID,
		DropoffLocationID: res.DropoffLocationID,
		StartDate:         res.StartDate.String(),
		EndDate:           res.EndDate.String(),
		Status:            string(res.Status),
		TotalCost:         res.TotalCost.StringFixed(2),
		OccurredAt:        at.UTC(),
	}
}

// Notify publishes a persistent JSON message.
func (n *QueueNotifier) Notify(ctx context.Context, res model.Reservation, eventType string) error {
	body, err := json.Marshal(NewReservationEvent(res, eventType, n.now()))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(n.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", n.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
