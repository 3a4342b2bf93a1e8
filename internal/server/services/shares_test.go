package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareService_CreateShareLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)

	link, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionView, 1)
	require.NoError(t, err)
	assert.Len(t, link.Token, common.ShareTokenLength)
	assert.True(t, link.Active)
	assert.Equal(t, 0, link.AccessCount)
	require.NotNil(t, link.ExpiresAt)
	assert.Equal(t, t0.Add(24*time.Hour), *link.ExpiresAt)

	forever, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionEdit, 0)
	require.NoError(t, err)
	assert.Nil(t, forever.ExpiresAt)
	assert.NotEqual(t, link.Token, forever.Token)

	_, err = f.shares.CreateShareLink(ctx, owner, plan.ID, "admin", 1)
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.shares.CreateShareLink(ctx, "intruder", plan.ID, common.PermissionView, 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestShareService_CreateShareLink_TokenError(t *testing.T) {
	f := newFixture(t)
	plan := f.createPlan(t)
	boom := errors.New("entropy exhausted")
	f.shares.newToken = func() (string, error) { return "", boom }

	_, err := f.shares.CreateShareLink(context.Background(), owner, plan.ID, common.PermissionView, 0)
	assert.ErrorIs(t, err, boom)
}

func TestShareService_GetShareByToken_CountsAndExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)

	link, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionView, 1)
	require.NoError(t, err)

	got, err := f.shares.GetShareByToken(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AccessCount)
	require.NotNil(t, got.LastAccessedAt)

	got, err = f.shares.GetShareByToken(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AccessCount)

	f.clock.Advance(48 * time.Hour)
	_, err = f.shares.GetShareByToken(ctx, link.Token)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestShareService_GetShareByToken_ExpiryIsExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)

	link, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionView, 1)
	require.NoError(t, err)

	f.clock.Set(*link.ExpiresAt)
	_, err = f.shares.GetShareByToken(ctx, link.Token)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestShareService_GetShareByToken_BadToken(t *testing.T) {
	f := newFixture(t)
	for _, tok := range []string{"", "short", "abcdefghijklm", "zzzzzzzzzzzz"} {
		_, err := f.shares.GetShareByToken(context.Background(), tok)
		assert.ErrorIs(t, err, common.ErrorNotFound, "token %q", tok)
	}
}

func TestShareService_GetShareByToken_CountFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)

	link, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionView, 0)
	require.NoError(t, err)

	f.mem.recordAccessErr = errors.New("db hiccup")
	got, err := f.shares.GetShareByToken(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)
	assert.Equal(t, 0, got.AccessCount)
}

func TestShareService_Revoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)

	link, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionView, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, f.shares.RevokeShareLink(ctx, "intruder", link.ID), common.ErrorNotFound)
	assert.ErrorIs(t, f.shares.RevokeShareLink(ctx, "", link.ID), common.ErrorUnauthorized)

	require.NoError(t, f.shares.RevokeShareLink(ctx, owner, link.ID))
	require.NoError(t, f.shares.RevokeShareLink(ctx, owner, link.ID))

	_, err = f.shares.GetShareByToken(ctx, link.Token)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	links, err := f.shares.GetShareLinks(ctx, owner, plan.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestShareService_UpdatePermissionAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)

	link, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionView, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, f.shares.UpdateSharePermission(ctx, owner, link.ID, "root"), common.ErrorValidation)
	require.NoError(t, f.shares.UpdateSharePermission(ctx, owner, link.ID, common.PermissionEdit))

	perm, err := f.shares.Authorize(ctx, link.Token, plan.ID, true)
	require.NoError(t, err)
	assert.Equal(t, common.PermissionEdit, perm)

	require.NoError(t, f.shares.DeleteShareLink(ctx, owner, link.ID))
	assert.ErrorIs(t, f.shares.DeleteShareLink(ctx, owner, link.ID), common.ErrorNotFound)
}

func TestShareService_GetShareLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)

	a, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionView, 0)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	b, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionEdit, 0)
	require.NoError(t, err)

	links, err := f.shares.GetShareLinks(ctx, owner, plan.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, b.ID, links[0].ID)
	assert.Equal(t, a.ID, links[1].ID)

	_, err = f.shares.GetShareLinks(ctx, "intruder", plan.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestShareService_ResolveShare(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)

	link, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionView, 0)
	require.NoError(t, err)

	got, p, err := f.shares.ResolveShare(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, p.ID)
	assert.Equal(t, 1, got.AccessCount)
}

func TestShareService_Authorize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)

	view, err := f.shares.CreateShareLink(ctx, owner, plan.ID, common.PermissionView, 0)
	require.NoError(t, err)

	perm, err := f.shares.Authorize(ctx, view.Token, plan.ID, false)
	require.NoError(t, err)
	assert.Equal(t, common.PermissionView, perm)

	_, err = f.shares.Authorize(ctx, view.Token, plan.ID, true)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = f.shares.Authorize(ctx, "", plan.ID, false)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// Authorize does not count accesses
	links, err := f.shares.GetShareLinks(ctx, owner, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, links[0].AccessCount)
}

func TestShareService_ShareURL(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "https://ideaforge.example/shared/abcDEF123456", f.shares.ShareURL("abcDEF123456"))
}
