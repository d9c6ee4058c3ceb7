package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/car-rental-reservation/internal/database"
	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// CarRepo reads the cars table.
type CarRepo struct {
	db *sql.DB
}

func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{db: db} }

// GetByID returns the car with the given id.  Inside a transaction the
// row is locked with FOR UPDATE, which serializes concurrent bookings of
// the same car until the transaction ends.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (model.Car, error) {
	q := `SELECT id, make, model, license_plate, daily_rate, status, location_id FROM cars WHERE id = ?`
	if database.InTx(ctx) {
		q += " FOR UPDATE"
	}
	var (
		c     model.Car
		locID sql.NullInt64
	)
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Make, &c.Model, &c.LicensePlate, &c.DailyRate, &c.Status, &locID,
	)
	if err != nil {
		return model.Car{}, fmt.Errorf("get car %d: %w", id, notFound(err))
	}
	if locID.Valid {
		lid := uint64(locID.Int64)
		c.LocationID = &lid
	}
	return c, nil
}
