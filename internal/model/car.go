package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Car is a vehicle in the rental fleet.  DailyRate is charged once per
// rental day.
type Car struct {
	ID           uint64          // cars.id
	Make         string          // cars.make
	Model        string          // cars.model
	LicensePlate string          // cars.license_plate
	DailyRate    decimal.Decimal // cars.daily_rate DECIMAL(10,2)
	Status       string          // cars.status (AVAILABLE, MAINTENANCE, ...)
	LocationID   *uint64         // cars.location_id (nullable)
}

// Describe renders "Make Model (PLATE)" for notifications.
func (c Car) Describe() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s (%s)", c.Make, c.Model, c.LicensePlate))
}

// Location is a branch where cars are picked up and dropped off.
type Location struct {
	ID      uint64 // locations.id
	Name    string // locations.name
	Code    string // locations.code
	Address string // locations.address
}

// Describe renders "Name (CODE)" for notifications.
func (l Location) Describe() string {
	return strings.TrimSpace(fmt.Sprintf("%s (%s)", l.Name, l.Code))
}
