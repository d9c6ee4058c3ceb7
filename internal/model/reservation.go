package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusActive    ReservationStatus = "ACTIVE"
	StatusCanceled  ReservationStatus = "CANCELED"
	StatusCompleted ReservationStatus = "COMPLETED"
)

// ParseReservationStatus validates a status string.
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch st := ReservationStatus(s); st {
	case StatusActive, StatusCanceled, StatusCompleted:
		return st, true
	}
	return "", false
}

// Terminal reports whether no further transitions are accepted.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCanceled || s == StatusCompleted
}

// Reservation books one car for a member over an inclusive date range.
// It only references members, cars, locations and add-ons by id; the
// add-on ids are kept as sets (see IDSet).
//
// Fields:
//  ID                   – primary key identifier, assigned on insert.
//  ReservationNumber    – unique public number (UUID string).
//  MemberID             – member who holds the reservation.
//  CarID                – reserved car.
//  PickupLocationID     – branch where the car is collected.
//  DropoffLocationID    – branch where the car is returned.
//  StartDate, EndDate   – inclusive rental dates, EndDate >= StartDate.
//  Status               – ACTIVE, CANCELED or COMPLETED.
//  AdditionalServiceIDs – ids of resolved additional services.
//  EquipmentIDs         – ids of resolved equipment.
//  TotalCost            – computed price, never set independently.
type Reservation struct {
	ID                   uint64            `json:"id"`
	ReservationNumber    string            `json:"reservationNumber"`
	MemberID             uint64            `json:"memberId"`
	CarID                uint64            `json:"carId"`
	PickupLocationID     uint64            `json:"pickupLocationId"`
	DropoffLocationID    uint64            `json:"dropoffLocationId"`
	StartDate            Date              `json:"startDate"`
	EndDate              Date              `json:"endDate"`
	Status               ReservationStatus `json:"status"`
	AdditionalServiceIDs []uint64          `json:"additionalServiceIds"`
	EquipmentIDs         []uint64          `json:"equipmentIds"`
	TotalCost            decimal.Decimal   `json:"totalCost"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

// ReservationRequest carries the caller's input for quote, create and
// update.  Dates are pointers so that a missing date can be told apart
// from the zero date.
type ReservationRequest struct {
	MemberID             uint64   `json:"memberId" validate:"required"`
	CarID                uint64   `json:"carId" validate:"required"`
	PickupLocationID     uint64   `json:"pickupLocationId" validate:"required"`
	DropoffLocationID    uint64   `json:"dropoffLocationId" validate:"required"`
	StartDate            *Date    `json:"startDate"`
	EndDate              *Date    `json:"endDate"`
	AdditionalServiceIDs []uint64 `json:"additionalServiceIds"`
	EquipmentIDs         []uint64 `json:"equipmentIds"`
}

// ReservationQuote is the priced projection returned by a quote.  Nothing
// is persisted when producing it.
type ReservationQuote struct {
	MemberID             uint64          `json:"memberId"`
	CarID                uint64          `json:"carId"`
	PickupLocationID     uint64          `json:"pickupLocationId"`
	DropoffLocationID    uint64          `json:"dropoffLocationId"`
	StartDate            Date            `json:"startDate"`
	EndDate              Date            `json:"endDate"`
	AdditionalServiceIDs []uint64        `json:"additionalServiceIds"`
	EquipmentIDs         []uint64        `json:"equipmentIds"`
	RentalDays           int             `json:"rentalDays"`
	TotalCost            decimal.Decimal `json:"totalCost"`
}
