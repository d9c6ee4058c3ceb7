package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/car-rental-reservation/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRentalDays(t *testing.T) {
	day1 := model.NewDate(2025, time.March, 1)
	assert.Equal(t, 1, RentalDays(day1, day1))
	assert.Equal(t, 1, RentalDays(day1, day1.AddDays(1)))
	assert.Equal(t, 3, RentalDays(day1, day1.AddDays(3)))
	// across a month boundary
	assert.Equal(t, 2, RentalDays(model.NewDate(2025, time.February, 27), model.NewDate(2025, time.March, 1)))
}

func TestComputeTotal(t *testing.T) {
	day1 := model.NewDate(2025, time.March, 1)
	tests := []struct {
		name      string
		rate      decimal.Decimal
		services  []decimal.Decimal
		equipment []decimal.Decimal
		days      int
		want      string
	}{
		{"car with one service and one equipment", dec("100"), []decimal.Decimal{dec("10")}, []decimal.Decimal{dec("5")}, 3, "345"},
		{"no add-ons", dec("100"), nil, nil, 2, "200"},
		{"same day billed once", dec("80"), nil, []decimal.Decimal{dec("7.25")}, 0, "87.25"},
		{"fractional prices stay exact", dec("0.1"), []decimal.Decimal{dec("0.2")}, nil, 3, "0.9"},
		{"several add-ons", dec("45.50"), []decimal.Decimal{dec("12.30"), dec("3.20")}, []decimal.Decimal{dec("1.99"), dec("0.01")}, 4, "252"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotal(tt.rate, tt.services, tt.equipment, day1, day1.AddDays(tt.days))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestAddOnPrices(t *testing.T) {
	services := []model.AdditionalService{{ID: 1, DailyPrice: dec("10")}, {ID: 2, DailyPrice: dec("2.5")}}
	equipment := []model.Equipment{{ID: 3, DailyPrice: dec("4")}}
	assert.Len(t, servicePrices(services), 2)
	assert.True(t, equipmentPrices(equipment)[0].Equal(dec("4")))
	assert.Empty(t, servicePrices(nil))
}
