package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/car-rental-reservation/internal/database"
	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// ServiceRepo reads the additional_services catalog.
type ServiceRepo struct {
	db *sql.DB
}

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

// FindAllByID returns the services whose ids appear in ids.  Unknown ids
// are skipped without error.  Results are ordered by id.
func (r *ServiceRepo) FindAllByID(ctx context.Context, ids []uint64) ([]model.AdditionalService, error) {
	out := make([]model.AdditionalService, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	in, args := inClause(ids)
	q := `SELECT id, name, daily_price FROM additional_services WHERE id IN (` + in + `) ORDER BY id`
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s model.AdditionalService
		if err := rows.Scan(&s.ID, &s.Name, &s.DailyPrice); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// EquipmentRepo reads the equipment catalog.
type EquipmentRepo struct {
	db *sql.DB
}

func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{db: db} }

// FindAllByID returns the equipment whose ids appear in ids.  Unknown ids
// are skipped without error.  Results are ordered by id.
func (r *EquipmentRepo) FindAllByID(ctx context.Context, ids []uint64) ([]model.Equipment, error) {
	out := make([]model.Equipment, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	in, args := inClause(ids)
	q := `SELECT id, name, daily_price FROM equipment WHERE id IN (` + in + `) ORDER BY id`
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e model.Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.DailyPrice); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
