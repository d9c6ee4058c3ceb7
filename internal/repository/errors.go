// Package repository implements the MySQL stores behind the reservation
// engine.  Lookups that find nothing return ErrNotFound so the service
// layer can tell a missing row apart from a driver failure.
package repository

import (
	"database/sql"
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup by id matches no row.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// notFound converts sql.ErrNoRows into ErrNotFound and passes other
// errors through unchanged.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// inClause builds "?,?,?" and the matching argument list for ids.
func inClause(ids []uint64) (string, []interface{}) {
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	return strings.Join(placeholders, ","), args
}
