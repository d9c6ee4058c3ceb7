package service

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// RentalDays returns the billable length of a rental.  A same-day rental
// is billed as one day.
func RentalDays(start, end model.Date) int {
	days := start.DaysUntil(end)
	if days < 1 {
		return 1
	}
	return days
}

// ComputeTotal prices a rental as (carDailyRate + Σservices + Σequipment)
// multiplied by the number of rental days.
func ComputeTotal(carDailyRate decimal.Decimal, servicePrices, equipmentPrices []decimal.Decimal, start, end model.Date) decimal.Decimal {
	perDay := carDailyRate
	for _, p := range servicePrices {
		perDay = perDay.Add(p)
	}
	for _, p := range equipmentPrices {
		perDay = perDay.Add(p)
	}
	return perDay.Mul(decimal.NewFromInt(int64(RentalDays(start, end))))
}

func servicePrices(services []model.AdditionalService) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(services))
	for _, s := range services {
		out = append(out, s.DailyPrice)
	}
	return out
}

func equipmentPrices(equipment []model.Equipment) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(equipment))
	for _, e := range equipment {
		out = append(out, e.DailyPrice)
	}
	return out
}
