package collaborators

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestJoin_InsertAnonymous(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO plan_collaborators .* ON CONFLICT \(plan_id, session_id\)\s+DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at\s+RETURNING`).
		WithArgs("c1", "p1", nil, "A", "view", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_id", "user_id", "session_id", "permission", "last_seen_at", "created_at", "inserted"}).
			AddRow("c1", "p1", nil, "A", "view", now, now, true))

	got, inserted, err := repo.Join(context.Background(), &models.Collaborator{
		ID: "c1", PlanID: "p1", SessionID: "A", Permission: "view", LastSeenAt: now, CreatedAt: now,
	})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "", got.UserID)
	assert.Equal(t, "A", got.SessionID)
}

func TestJoin_ExistingKeepsOriginalRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	later := now.Add(time.Minute)
	mock.ExpectQuery(`INSERT INTO plan_collaborators`).
		WithArgs("c2", "p1", "u9", "A", "edit", later, later).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_id", "user_id", "session_id", "permission", "last_seen_at", "created_at", "inserted"}).
			AddRow("c1", "p1", nil, "A", "view", later, now, false))

	got, inserted, err := repo.Join(context.Background(), &models.Collaborator{
		ID: "c2", PlanID: "p1", UserID: "u9", SessionID: "A", Permission: "edit", LastSeenAt: later, CreatedAt: later,
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, "view", got.Permission)
	assert.True(t, later.Equal(got.LastSeenAt))
}

func TestJoin_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO plan_collaborators`).WillReturnError(errors.New("boom"))

	_, _, err := repo.Join(context.Background(), &models.Collaborator{ID: "c1"})
	require.ErrorContains(t, err, "db error: boom")
}

func TestTouchLastSeen(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE plan_collaborators SET last_seen_at = \$3 WHERE id = \$1 AND plan_id = \$2`).
		WithArgs("c1", "p1", now).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.TouchLastSeen(context.Background(), "p1", "c1", now))

	// unknown id, or a collaborator of another plan
	mock.ExpectExec(`UPDATE plan_collaborators`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.TouchLastSeen(context.Background(), "p2", "c1", now), common.ErrorNotFound)

	mock.ExpectExec(`UPDATE plan_collaborators`).WillReturnError(&pgconn.PgError{Code: "22P02"})
	require.ErrorIs(t, repo.TouchLastSeen(context.Background(), "p1", "bad", now), common.ErrorNotFound)
}

func TestListActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	since := now.Add(-5 * time.Minute)
	mock.ExpectQuery(`WHERE plan_id = \$1 AND last_seen_at >= \$2\s+ORDER BY last_seen_at DESC`).
		WithArgs("p1", since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_id", "user_id", "session_id", "permission", "last_seen_at", "created_at"}).
			AddRow("c2", "p1", "u2", "B", "edit", now, now).
			AddRow("c1", "p1", nil, "A", "view", now.Add(-time.Minute), now))

	got, err := repo.ListActive(context.Background(), "p1", since)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[0].UserID)
	assert.Equal(t, "", got[1].UserID)
}
