package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNoRows is returned when a single-row query finds nothing.
var ErrNoRows = errors.New("no rows in result set")

// IsNoRows reports whether err means "not found" for any backend.
func IsNoRows(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, ErrNoRows)
}
