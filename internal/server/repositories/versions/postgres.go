// Package versions provides the PostgreSQL repository for plan snapshots.
package versions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/dbx"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	selectColumns   = `id, plan_id, owner_id, version_number, title, content, changes_summary, created_at`
	uniqueViolation = "23505"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a snapshot. A duplicate (plan_id, version_number) means a
// concurrent writer already took this number and maps to ErrVersionConflict.
func (r *PostgresRepository) Create(ctx context.Context, v *models.Version) error {
	content, err := json.Marshal(v.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	var summary sql.NullString
	if v.ChangesSummary != "" {
		summary = sql.NullString{String: v.ChangesSummary, Valid: true}
	}
	query := `
		INSERT INTO plan_versions (id, plan_id, owner_id, version_number, title, content, changes_summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		v.ID, v.PlanID, v.OwnerID, v.VersionNumber, v.Title, content, summary, v.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrVersionConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByPlan returns snapshots newest first.
func (r *PostgresRepository) ListByPlan(ctx context.Context, planID string) ([]*models.Version, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM plan_versions WHERE plan_id = $1 ORDER BY version_number DESC`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to select versions: %w", err)
	}
	defer rows.Close()

	var result []*models.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, planID string, versionNumber int) (*models.Version, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM plan_versions WHERE plan_id = $1 AND version_number = $2`, planID, versionNumber)
	return oneVersion(row)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Version, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM plan_versions WHERE id = $1`, id)
	return oneVersion(row)
}

// Delete removes a single snapshot. Siblings keep their numbers.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plan_versions WHERE id = $1`, id)
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

func oneVersion(row *sql.Row) (*models.Version, error) {
	v, err := scanVersion(row)
	if dbx.NoRow(err) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return v, nil
}

func scanVersion(s scanner) (*models.Version, error) {
	var v models.Version
	var content []byte
	var summary sql.NullString
	if err := s.Scan(&v.ID, &v.PlanID, &v.OwnerID, &v.VersionNumber, &v.Title, &content, &summary, &v.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(content, &v.Content); err != nil {
		return nil, fmt.Errorf("unmarshal content: %w", err)
	}
	v.ChangesSummary = summary.String
	return &v, nil
}
