package queue

import (
	"fmt"
	"strings"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "CRMS Reservation"

// Details are the human readable parts of a notification resolved from
// the stores.
type Details struct {
	Car     string
	Pickup  string
	Dropoff string
}

// Subject renders "<prefix> <EVENT>".
func Subject(prefix, event string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + " " + event
}

// Body renders the plain text notification.
func Body(ev ReservationEvent, d Details) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\n", ev.Event)
	fmt.Fprintf(&b, "Reservation number: %s\n", ev.ReservationNumber)
	fmt.Fprintf(&b, "Car: %s\n", orUnknown(d.Car))
	fmt.Fprintf(&b, "Pickup: %s\n", orUnknown(d.Pickup))
	fmt.Fprintf(&b, "Dropoff: %s\n", orUnknown(d.Dropoff))
	fmt.Fprintf(&b, "Dates: %s to %s\n", ev.StartDate, ev.EndDate)
	fmt.Fprintf(&b, "Total cost: %s\n", ev.TotalCost)
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
