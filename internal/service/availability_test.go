package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/car-rental-reservation/internal/model"
)

func TestRangesOverlap(t *testing.T) {
	d := func(day int) model.Date { return model.NewDate(2025, time.May, day) }
	tests := []struct {
		name           string
		s1, e1, s2, e2 model.Date
		want           bool
	}{
		{"disjoint before", d(1), d(3), d(4), d(6), false},
		{"disjoint after", d(7), d(9), d(4), d(6), false},
		{"pickup on other's dropoff day", d(6), d(8), d(4), d(6), true},
		{"dropoff on other's pickup day", d(1), d(4), d(4), d(6), true},
		{"contained", d(5), d(5), d(4), d(6), true},
		{"containing", d(1), d(10), d(4), d(6), true},
		{"identical", d(4), d(6), d(4), d(6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangesOverlap(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, RangesOverlap(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestAvailabilityCheckerOnlyActiveBlocks(t *testing.T) {
	st := newMemStore()
	st.nextID = 3
	st.reservations[1] = model.Reservation{ID: 1, CarID: 10, Status: model.StatusCanceled,
		StartDate: model.NewDate(2025, time.May, 1), EndDate: model.NewDate(2025, time.May, 5)}
	st.reservations[2] = model.Reservation{ID: 2, CarID: 10, Status: model.StatusCompleted,
		StartDate: model.NewDate(2025, time.May, 1), EndDate: model.NewDate(2025, time.May, 5)}
	st.reservations[3] = model.Reservation{ID: 3, CarID: 10, Status: model.StatusActive,
		StartDate: model.NewDate(2025, time.May, 10), EndDate: model.NewDate(2025, time.May, 12)}
	checker := NewAvailabilityChecker(reservationStore{st})
	ctx := context.Background()

	ok, err := checker.IsAvailable(ctx, 10, model.NewDate(2025, time.May, 2), model.NewDate(2025, time.May, 4))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checker.IsAvailable(ctx, 10, model.NewDate(2025, time.May, 12), model.NewDate(2025, time.May, 14))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = checker.IsAvailable(ctx, 11, model.NewDate(2025, time.May, 10), model.NewDate(2025, time.May, 12))
	require.NoError(t, err)
	assert.True(t, ok)

	overlapping, err := checker.IsOverlapping(ctx, 10, model.StatusActive,
		model.NewDate(2025, time.May, 11), model.NewDate(2025, time.May, 13), 3)
	require.NoError(t, err)
	assert.False(t, overlapping, "a reservation never conflicts with itself")
}
