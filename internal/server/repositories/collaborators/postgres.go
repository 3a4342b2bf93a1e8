// Package collaborators provides the PostgreSQL repository for presence records.
package collaborators

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/dbx"
	"github.com/dmitrijs2005/ideaforge/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Join upserts on (plan_id, session_id). An existing row only gets its
// last_seen_at refreshed; the returned flag reports whether a row was inserted.
func (r *PostgresRepository) Join(ctx context.Context, c *models.Collaborator) (*models.Collaborator, bool, error) {
	var userID sql.NullString
	if c.UserID != "" {
		userID = sql.NullString{String: c.UserID, Valid: true}
	}
	query := `
		INSERT INTO plan_collaborators (id, plan_id, user_id, session_id, permission, last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (plan_id, session_id)
		DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at
		RETURNING id, plan_id, user_id, session_id, permission, last_seen_at, created_at, (xmax = 0) AS inserted
	`
	var out models.Collaborator
	var outUser sql.NullString
	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.PlanID, userID, c.SessionID, c.Permission, c.LastSeenAt, c.CreatedAt).
		Scan(&out.ID, &out.PlanID, &outUser, &out.SessionID, &out.Permission, &out.LastSeenAt, &out.CreatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	out.UserID = outUser.String
	return &out, inserted, nil
}

// TouchLastSeen refreshes one collaborator of planID. A collaborator of
// another plan is reported as missing.
func (r *PostgresRepository) TouchLastSeen(ctx context.Context, planID, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE plan_collaborators SET last_seen_at = $3 WHERE id = $1 AND plan_id = $2`, id, planID, now)
	if err != nil {
		if dbx.IsInvalidID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectRows(res)
}

// ListActive returns collaborators seen at or after since, most recent first.
func (r *PostgresRepository) ListActive(ctx context.Context, planID string, since time.Time) ([]*models.Collaborator, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, plan_id, user_id, session_id, permission, last_seen_at, created_at
		FROM plan_collaborators
		WHERE plan_id = $1 AND last_seen_at >= $2
		ORDER BY last_seen_at DESC`, planID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to select collaborators: %w", err)
	}
	defer rows.Close()

	var result []*models.Collaborator
	for rows.Next() {
		var c models.Collaborator
		var userID sql.NullString
		if err := rows.Scan(&c.ID, &c.PlanID, &userID, &c.SessionID, &c.Permission, &c.LastSeenAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.UserID = userID.String
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
