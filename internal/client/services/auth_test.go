package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/ideaforge/internal/client/client"
	"github.com/dmitrijs2005/ideaforge/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "ideaforge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClient overrides only what the auth service calls.
type fakeClient struct {
	client.Client

	token    string
	listErr  error
	closeErr error
	closed   bool
}

func (f *fakeClient) SetAccessToken(token string) { f.token = token }

func (f *fakeClient) ListPlans(context.Context) ([]*models.Plan, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return nil, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return f.closeErr
}

func TestLogin_SavesToken(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{}
	svc := NewAuthService(fc, db)
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, "jwt-1"))

	assert.True(t, svc.LoggedIn())
	assert.Equal(t, "jwt-1", fc.token)

	v, ok, err := metadata.NewSQLiteRepository(db).Get(ctx, metadata.KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jwt-1", v)
}

func TestLogin_RejectedToken(t *testing.T) {
	for _, serverErr := range []error{common.ErrorUnauthorized, common.ErrTokenExpired} {
		db := setupDB(t)
		fc := &fakeClient{listErr: serverErr}
		svc := NewAuthService(fc, db)

		err := svc.Login(context.Background(), "bad")
		require.ErrorIs(t, err, common.ErrorUnauthorized)
		assert.False(t, svc.LoggedIn())
		assert.Empty(t, fc.token)

		_, ok, err := metadata.NewSQLiteRepository(db).Get(context.Background(), metadata.KeyAccessToken)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestLogin_ServerUnavailable(t *testing.T) {
	svc := NewAuthService(&fakeClient{listErr: client.ErrUnavailable}, setupDB(t))

	err := svc.Login(context.Background(), "jwt")
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Contains(t, err.Error(), "verify token")
}

func TestRestoreAndLogout(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	fc := &fakeClient{}
	svc := NewAuthService(fc, db)

	ok, err := svc.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "nothing saved yet")

	require.NoError(t, metadata.NewSQLiteRepository(db).Set(ctx, metadata.KeyAccessToken, "saved"))

	ok, err = svc.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "saved", fc.token)
	assert.True(t, svc.LoggedIn())

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, svc.LoggedIn())
	assert.Empty(t, fc.token)

	ok, err = svc.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClose_Delegates(t *testing.T) {
	fc := &fakeClient{closeErr: errors.New("boom")}
	svc := NewAuthService(fc, setupDB(t))

	require.Error(t, svc.Close(context.Background()))
	assert.True(t, fc.closed)
}
