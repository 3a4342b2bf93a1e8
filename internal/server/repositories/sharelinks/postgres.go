// Package sharelinks provides the PostgreSQL repository for share-link tokens.
package sharelinks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/dbx"
	"github.com/dmitrijs2005/ideaforge/internal/models"
)

const selectColumns = `id, plan_id, owner_id, token, permission, is_active, expires_at, access_count, last_accessed_at, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.ShareLink) error {
	query := `
		INSERT INTO share_links (id, plan_id, owner_id, token, permission, is_active, expires_at, access_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.PlanID, s.OwnerID, s.Token, s.Permission, s.Active, s.ExpiresAt, s.AccessCount, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.ShareLink, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM share_links WHERE id = $1`, id)
	return oneLink(row)
}

// FindUsableByToken returns the link only if it is active and not expired at now.
// Unknown, revoked and expired tokens all yield common.ErrorNotFound.
func (r *PostgresRepository) FindUsableByToken(ctx context.Context, token string, now time.Time) (*models.ShareLink, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+` FROM share_links
		WHERE token = $1 AND is_active AND (expires_at IS NULL OR expires_at > $2)`, token, now)
	return oneLink(row)
}

// RecordAccess bumps the access counter in a single statement and returns the new value.
func (r *PostgresRepository) RecordAccess(ctx context.Context, id string, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		UPDATE share_links SET access_count = access_count + 1, last_accessed_at = $2
		WHERE id = $1 RETURNING access_count`, id, now).Scan(&count)
	if dbx.NoRow(err) {
		return 0, common.ErrorNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

// ListActiveByPlan returns active links (expired ones included), newest first.
func (r *PostgresRepository) ListActiveByPlan(ctx context.Context, planID string) ([]*models.ShareLink, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+` FROM share_links
		WHERE plan_id = $1 AND is_active ORDER BY created_at DESC`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to select share links: %w", err)
	}
	defer rows.Close()

	var result []*models.ShareLink
	for rows.Next() {
		s, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Deactivate revokes the link. Running it on an already revoked link still
// matches the row, so the call is idempotent.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE share_links SET is_active = FALSE, updated_at = $2 WHERE id = $1`, id, now)
	if err != nil {
		if dbx.IsInvalidID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectRows(res)
}

func (r *PostgresRepository) UpdatePermission(ctx context.Context, id, permission string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE share_links SET permission = $2, updated_at = $3 WHERE id = $1`, id, permission, now)
	if err != nil {
		if dbx.IsInvalidID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectRows(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM share_links WHERE id = $1`, id)
	if err != nil {
		if dbx.IsInvalidID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectRows(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func oneLink(row *sql.Row) (*models.ShareLink, error) {
	s, err := scanLink(row)
	if dbx.NoRow(err) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share link: %w", err)
	}
	return s, nil
}

func scanLink(sc scanner) (*models.ShareLink, error) {
	var s models.ShareLink
	var expiresAt, lastAccessedAt sql.NullTime
	if err := sc.Scan(&s.ID, &s.PlanID, &s.OwnerID, &s.Token, &s.Permission, &s.Active,
		&expiresAt, &s.AccessCount, &lastAccessedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		s.ExpiresAt = &expiresAt.Time
	}
	if lastAccessedAt.Valid {
		s.LastAccessedAt = &lastAccessedAt.Time
	}
	return &s, nil
}
