package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AdditionalService is a per-day priced service (insurance, extra driver)
// that can be attached to a reservation.
type AdditionalService struct {
	ID         uint64          // additional_services.id
	Name       string          // additional_services.name
	DailyPrice decimal.Decimal // additional_services.daily_price
}

// Equipment is a per-day priced physical add-on (GPS, child seat).
type Equipment struct {
	ID         uint64          // equipment.id
	Name       string          // equipment.name
	DailyPrice decimal.Decimal // equipment.daily_price
}

// IDSet normalizes ids into a sorted slice without duplicates or zero
// values.  The result is never nil.
func IDSet(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
