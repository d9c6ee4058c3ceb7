package service

import (
	"context"

	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// OverlapFinder is the reservation store query behind availability checks.
type OverlapFinder interface {
	ExistsOverlapping(ctx context.Context, carID uint64, status model.ReservationStatus, start, end model.Date, excludeID uint64) (bool, error)
}

// AvailabilityChecker decides whether a car is free over a date range.
// Only ACTIVE reservations block a car.
type AvailabilityChecker struct {
	store OverlapFinder
}

func NewAvailabilityChecker(store OverlapFinder) *AvailabilityChecker {
	return &AvailabilityChecker{store: store}
}

// IsOverlapping reports whether the car has a reservation in status whose
// range intersects [start, end], ends included.  A non-zero excludeID is
// ignored in the check so an update does not collide with itself.
func (a *AvailabilityChecker) IsOverlapping(ctx context.Context, carID uint64, status model.ReservationStatus, start, end model.Date, excludeID uint64) (bool, error) {
	return a.store.ExistsOverlapping(ctx, carID, status, start, end, excludeID)
}

// IsAvailable reports whether no ACTIVE reservation of the car intersects
// [start, end].
func (a *AvailabilityChecker) IsAvailable(ctx context.Context, carID uint64, start, end model.Date) (bool, error) {
	overlapping, err := a.IsOverlapping(ctx, carID, model.StatusActive, start, end, 0)
	if err != nil {
		return false, err
	}
	return !overlapping, nil
}

// RangesOverlap is the inclusive intersection test that
// ReservationRepo.ExistsOverlapping expresses in SQL:
// [s1, e1] and [s2, e2] overlap iff s1 <= e2 and e1 >= s2.
func RangesOverlap(s1, e1, s2, e2 model.Date) bool {
	return !s1.After(e2) && !e1.Before(s2)
}
