package dbx

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// invalidTextRepresentation is what Postgres raises when a string cannot be
// cast to the column type, e.g. a malformed uuid.
const invalidTextRepresentation = "22P02"

// IsInvalidID reports whether err is Postgres rejecting a malformed id literal.
func IsInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

// NoRow reports whether a lookup found nothing. A malformed id can never
// match a row, so it counts as missing too.
func NoRow(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || IsInvalidID(err)
}
