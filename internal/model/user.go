package model

import (
	"strings"
	"time"
)

// Role distinguishes the kinds of accounts stored in the users table.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// User represents a row of the `users` table.  Members and admins share
// the table; member-only columns are nullable and empty for admins.
//
// Fields:
//  ID                   – primary key identifier.
//  Email                – unique email address.
//  PasswordHash         – bcrypt hashed password.
//  Role                 – MEMBER or ADMIN.
//  FullName             – display name.
//  DrivingLicenseNumber – member only; required before reserving a car.
//  Phone                – member only; optional contact number.
//  IsActive             – whether the account is active.
type User struct {
	ID                   uint64    // users.id
	Email                string    // users.email
	PasswordHash         string    // users.password_hash
	Role                 Role      // users.role
	FullName             string    // users.full_name
	DrivingLicenseNumber string    // users.driving_license_number (nullable)
	Phone                string    // users.phone (nullable)
	IsActive             bool      // users.is_active
	CreatedAt            time.Time // users.created_at
	UpdatedAt            time.Time // users.updated_at
}

// HasDrivingLicense reports whether a non-blank license number is on file.
func (u User) HasDrivingLicense() bool {
	return strings.TrimSpace(u.DrivingLicenseNumber) != ""
}
