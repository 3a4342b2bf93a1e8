package recent

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ideaforge/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Touch(ctx context.Context, s Share) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recent_shares (token, plan_id, title, permission, opened_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			plan_id = excluded.plan_id,
			title = excluded.title,
			permission = excluded.permission,
			opened_at = excluded.opened_at
	`, s.Token, s.PlanID, s.Title, s.Permission, s.OpenedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save recent share: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Share, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT token, plan_id, title, permission, opened_at
		FROM recent_shares
		ORDER BY opened_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent shares: %w", err)
	}
	defer rows.Close()

	var out []Share
	for rows.Next() {
		var s Share
		if err := rows.Scan(&s.Token, &s.PlanID, &s.Title, &s.Permission, &s.OpenedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent share: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent shares: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Forget(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recent_shares WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to forget recent share: %w", err)
	}
	return nil
}
