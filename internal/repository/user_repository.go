package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/car-rental-reservation/internal/database"
	"github.com/iliyamo/car-rental-reservation/internal/model"
)

const userColumns = "id,email,password_hash,role,full_name,driving_license_number,phone,is_active,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := database.Conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	u, err := scanUser(row)
	return u, notFound(err)
}

// GetByID fetches a user of any role by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := database.Conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	u, err := scanUser(row)
	return u, notFound(err)
}

// GetMemberByID fetches a user holding the MEMBER role.  Admin accounts
// are reported as ErrNotFound.
func (r *UserRepo) GetMemberByID(ctx context.Context, id uint64) (model.User, error) {
	row := database.Conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND role=? LIMIT 1", id, string(model.RoleMember))
	u, err := scanUser(row)
	return u, notFound(err)
}

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		role    string
		license sql.NullString
		phone   sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.FullName,
		&license, &phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	u.DrivingLicenseNumber = license.String
	u.Phone = phone.String
	return u, nil
}
