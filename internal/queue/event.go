// Package queue defines the reservation event payload exchanged over the
// message broker and the background consumer that turns events into
// email notifications.
package queue

import "time"

// ReservationEventsQueue is the durable queue reservation events are
// published to.
const ReservationEventsQueue = "reservation.events"

// ReservationEvent is published after a reservation write has committed.
// It carries identifiers only; the consumer resolves member, car and
// locations itself so events stay small and never leak stale copies.
type ReservationEvent struct {
	Event             string    `json:"event"`
	ReservationID     uint64    `json:"reservation_id"`
	ReservationNumber string    `json:"reservation_number"`
	MemberID          uint64    `json:"member_id"`
	CarID             uint64    `json:"car_id"`
	PickupLocationID  uint64    `json:"pickup_location_id"`
	DropoffLocationID uint64    `json:"dropoff_location_id"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	Status            string    `json:"status"`
	TotalCost         string    `json:"total_cost"`
	OccurredAt        time.Time `json:"occurred_at"`
}
