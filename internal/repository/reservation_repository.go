package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/car-rental-reservation/internal/database"
	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// ReservationRepo persists reservations and their add-on sets.  Selected
// additional services live in reservation_services and selected equipment
// in reservation_equipment; both are rewritten on every save.  All methods
// join the transaction carried by ctx when there is one.
type ReservationRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo {
	return &ReservationRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const reservationColumns = `id, reservation_number, member_id, car_id, pickup_location_id, dropoff_location_id,
	   start_date, end_date, status, total_cost, created_at, updated_at`

// ExistsOverlapping reports whether the car has a reservation in the given
// status whose [start_date, end_date] range intersects [start, end].  Both
// ends are inclusive.  A non-zero excludeID leaves that reservation out of
// the check.  Inside a transaction the lookup is a locking read, so it sees
// rows committed after the transaction's snapshot was taken.
func (r *ReservationRepo) ExistsOverlapping(ctx context.Context, carID uint64, status model.ReservationStatus, start, end model.Date, excludeID uint64) (bool, error) {
	q := `SELECT id FROM reservations
			WHERE car_id = ? AND status = ? AND start_date <= ? AND end_date >= ?`
	args := []interface{}{carID, string(status), end, start}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	q += ` LIMIT 1`
	if database.InTx(ctx) {
		q += ` FOR SHARE`
	}
	var id uint64
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, q, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check overlap for car %d: %w", carID, err)
	}
	return true, nil
}

// GetByID loads a reservation together with its add-on id sets.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	conn := database.Conn(ctx, r.db)
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	if database.InTx(ctx) {
		q += " FOR UPDATE"
	}
	res, err := scanReservation(conn.QueryRowContext(ctx, q, id))
	if err != nil {
		return model.Reservation{}, fmt.Errorf("get reservation %d: %w", id, notFound(err))
	}
	if err := r.loadAddOns(ctx, conn, []*model.Reservation{&res}); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// Save inserts the reservation when its ID is zero and updates it
// otherwise.  The add-on join rows are replaced with the reservation's
// current id sets.  ID and timestamps are populated on res.
func (r *ReservationRepo) Save(ctx context.Context, res *model.Reservation) error {
	conn := database.Conn(ctx, r.db)
	now := r.now()
	if res.ID == 0 {
		const ins = `INSERT INTO reservations
			(reservation_number, member_id, car_id, pickup_location_id, dropoff_location_id,
			 start_date, end_date, status, total_cost, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		result, err := conn.ExecContext(ctx, ins,
			res.ReservationNumber, res.MemberID, res.CarID, res.PickupLocationID, res.DropoffLocationID,
			res.StartDate, res.EndDate, string(res.Status), res.TotalCost, now, now)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		res.ID = uint64(id)
		res.CreatedAt = now
	} else {
		const upd = `UPDATE reservations
			SET member_id = ?, car_id = ?, pickup_location_id = ?, dropoff_location_id = ?,
				start_date = ?, end_date = ?, status = ?, total_cost = ?, updated_at = ?
			WHERE id = ?`
		result, err := conn.ExecContext(ctx, upd,
			res.MemberID, res.CarID, res.PickupLocationID, res.DropoffLocationID,
			res.StartDate, res.EndDate, string(res.Status), res.TotalCost, now, res.ID)
		if err != nil {
			return fmt.Errorf("update reservation %d: %w", res.ID, err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update reservation %d: %w", res.ID, ErrNotFound)
		}
	}
	res.UpdatedAt = now
	if err := replaceLinks(ctx, conn, "reservation_services", "service_id", res.ID, res.AdditionalServiceIDs); err != nil {
		return err
	}
	return replaceLinks(ctx, conn, "reservation_equipment", "equipment_id", res.ID, res.EquipmentIDs)
}

// List returns reservations ordered by start date, newest first.  A nil
// status returns every reservation.
func (r *ReservationRepo) List(ctx context.Context, status *model.ReservationStatus) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations`
	var args []interface{}
	if status != nil {
		q += ` WHERE status = ?`
		args = append(args, string(*status))
	}
	q += ` ORDER BY start_date DESC, id DESC`
	return r.query(ctx, q, args...)
}

// ListByMember returns a member's reservations, newest start date first.
func (r *ReservationRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE member_id = ? ORDER BY start_date DESC, id DESC`
	return r.query(ctx, q, memberID)
}

func (r *ReservationRepo) query(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
	conn := database.Conn(ctx, r.db)
	rows, err := conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()
	list := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}
	ptrs := make([]*model.Reservation, len(list))
	for i := range list {
		ptrs[i] = &list[i]
	}
	if err := r.loadAddOns(ctx, conn, ptrs); err != nil {
		return nil, err
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (model.Reservation, error) {
	var (
		res    model.Reservation
		status string
	)
	err := row.Scan(&res.ID, &res.ReservationNumber, &res.MemberID, &res.CarID,
		&res.PickupLocationID, &res.DropoffLocationID, &res.StartDate, &res.EndDate,
		&status, &res.TotalCost, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	res.Status = model.ReservationStatus(status)
	res.AdditionalServiceIDs = []uint64{}
	res.EquipmentIDs = []uint64{}
	return res, nil
}

// loadAddOns fills the add-on id sets for all given reservations with one
// query per join table.
func (r *ReservationRepo) loadAddOns(ctx context.Context, conn database.Executor, list []*model.Reservation) error {
	index := make(map[uint64]*model.Reservation, len(list))
	ids := make([]uint64, 0, len(list))
	for _, res := range list {
		index[res.ID] = res
		ids = append(ids, res.ID)
	}
	in, args := inClause(ids)
	load := func(table, column string, add func(res *model.Reservation, id uint64)) error {
		q := `SELECT reservation_id, ` + column + ` FROM ` + table +
			` WHERE reservation_id IN (` + in + `) ORDER BY reservation_id, ` + column
		rows, err := conn.QueryContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("query %s: %w", table, err)
		}
		defer rows.Close()
		for rows.Next() {
			var resID, linkID uint64
			if err := rows.Scan(&resID, &linkID); err != nil {
				return fmt.Errorf("scan %s: %w", table, err)
			}
			if res, ok := index[resID]; ok {
				add(res, linkID)
			}
		}
		return rows.Err()
	}
	if err := load("reservation_services", "service_id", func(res *model.Reservation, id uint64) {
		res.AdditionalServiceIDs = append(res.AdditionalServiceIDs, id)
	}); err != nil {
		return err
	}
	return load("reservation_equipment", "equipment_id", func(res *model.Reservation, id uint64) {
		res.EquipmentIDs = append(res.EquipmentIDs, id)
	})
}

// replaceLinks rewrites the join rows of one reservation.  Passing an
// empty slice only deletes.
func replaceLinks(ctx context.Context, conn database.Executor, table, column string, reservationID uint64, ids []uint64) error {
	if _, err := conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE reservation_id = ?`, reservationID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(ids) == 0 {
		return nil
	}
	values := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids)*2)
	for _, id := range ids {
		values = append(values, "(?, ?)")
		args = append(args, reservationID, id)
	}
	q := `INSERT INTO ` + table + ` (reservation_id, ` + column + `) VALUES ` + strings.Join(values, ",")
	if _, err := conn.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
