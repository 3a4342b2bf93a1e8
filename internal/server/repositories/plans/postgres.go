// Package plans provides the PostgreSQL repository for plan documents.
package plans

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/dbx"
	"github.com/dmitrijs2005/ideaforge/internal/models"
)

const selectColumns = `id, owner_id, title, idea, content, current_version, total_versions, created_at, updated_at`

// PostgresRepository implements plan storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Plan) error {
	content, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	query := `
		INSERT INTO plans (id, owner_id, title, idea, content, current_version, total_versions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.OwnerID, p.Title, p.Idea, content, p.CurrentVersion, p.TotalVersions, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Plan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM plans WHERE id = $1`, id)
	p, err := scanPlan(row)
	if dbx.NoRow(err) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return p, nil
}

// ListByOwner returns the owner's plans, most recently updated first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM plans WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select plans: %w", err)
	}
	defer rows.Close()

	var result []*models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateContent overwrites title, content and updated_at.
func (r *PostgresRepository) UpdateContent(ctx context.Context, p *models.Plan) error {
	content, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE plans SET title = $2, content = $3, updated_at = $4 WHERE id = $1`,
		p.ID, p.Title, content, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectRows(res)
}

// AdvanceVersion moves both counters to versionNumber, but only when the
// stored total is exactly versionNumber-1. Otherwise ErrVersionConflict.
func (r *PostgresRepository) AdvanceVersion(ctx context.Context, id string, versionNumber int, now time.Time) error {
	query := `
		UPDATE plans
		SET current_version = $2, total_versions = $2, updated_at = $3
		WHERE id = $1 AND total_versions = $2 - 1
	`
	res, err := r.db.ExecContext(ctx, query, id, versionNumber, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Delete removes the plan; versions and share links go with it (ON DELETE CASCADE).
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
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

func scanPlan(s scanner) (*models.Plan, error) {
	var p models.Plan
	var content []byte
	if err := s.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Idea, &content,
		&p.CurrentVersion, &p.TotalVersions, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(content, &p.Content); err != nil {
		return nil, fmt.Errorf("unmarshal content: %w", err)
	}
	return &p, nil
}
