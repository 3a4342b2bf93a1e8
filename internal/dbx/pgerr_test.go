package dbx

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNoRow(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no rows", sql.ErrNoRows, true},
		{"malformed uuid", &pgconn.PgError{Code: "22P02"}, true},
		{"wrapped malformed uuid", fmt.Errorf("scan: %w", &pgconn.PgError{Code: "22P02"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NoRow(tt.err))
		})
	}
}
