package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/car-rental-reservation/internal/database"
	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// LocationRepo reads the locations table.
type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

// GetByID returns a location or ErrNotFound.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (model.Location, error) {
	const q = `SELECT id, name, code, address FROM locations WHERE id = ?`
	var (
		l    model.Location
		addr sql.NullString
	)
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&l.ID, &l.Name, &l.Code, &addr)
	if err != nil {
		return model.Location{}, fmt.Errorf("get location %d: %w", id, notFound(err))
	}
	l.Address = addr.String
	return l, nil
}
