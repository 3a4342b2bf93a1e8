package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ideaforge/internal/timex"
	"github.com/google/uuid"
)

// ShareService is the share-link registry.
type ShareService struct {
	store
	baseURL  string
	newToken func() (string, error)
	logger   logging.Logger
}

func NewShareService(db *sql.DB, rm repomanager.RepositoryManager, clock timex.Clock, baseURL string, l logging.Logger) *ShareService {
	return &ShareService{
		store:    newStore(db, rm, clock),
		baseURL:  baseURL,
		newToken: func() (string, error) { return common.RandomAlphanumeric(common.ShareTokenLength) },
		logger:   l.With("module", "share_service"),
	}
}

// CreateShareLink issues a new token for the owner's plan. expiresInDays <= 0
// means the link never expires.
func (s *ShareService) CreateShareLink(ctx context.Context, ownerID, planID, permission string, expiresInDays int) (*models.ShareLink, error) {
	if !common.ValidPermission(permission) {
		return nil, common.ErrorValidation
	}
	if _, _, err := s.authorize(ctx, s.db, Actor{UserID: ownerID}, planID, accessOwner); err != nil {
		return nil, err
	}

	token, err := s.newToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	link := &models.ShareLink{
		ID:         uuid.NewString(),
		PlanID:     planID,
		OwnerID:    ownerID,
		Token:      token,
		Permission: permission,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if expiresInDays > 0 {
		exp := now.Add(time.Duration(expiresInDays) * 24 * time.Hour)
		link.ExpiresAt = &exp
	}

	if err := s.repomanager.ShareLinks(s.db).Create(ctx, link); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "share link created", "plan_id", planID, "share_id", link.ID, "permission", permission)
	return link, nil
}

// GetShareLinks lists the plan's active links, newest first.
func (s *ShareService) GetShareLinks(ctx context.Context, ownerID, planID string) ([]*models.ShareLink, error) {
	if _, _, err := s.authorize(ctx, s.db, Actor{UserID: ownerID}, planID, accessOwner); err != nil {
		return nil, err
	}
	return s.repomanager.ShareLinks(s.db).ListActiveByPlan(ctx, planID)
}

// GetShareByToken resolves a usable link and counts the access. Unknown,
// revoked and expired tokens all return common.ErrorNotFound.
//
// Counting is best-effort: a failed increment is logged and the link is
// still returned.
func (s *ShareService) GetShareByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	if len(token) != common.ShareTokenLength {
		return nil, common.ErrorNotFound
	}

	repo := s.repomanager.ShareLinks(s.db)
	now := s.now()

	link, err := repo.FindUsableByToken(ctx, token, now)
	if err != nil {
		return nil, err
	}

	count, err := repo.RecordAccess(ctx, link.ID, now)
	if err != nil {
		s.logger.Warn(ctx, "failed to record share access", "share_id", link.ID, "error", err)
		return link, nil
	}
	link.AccessCount = count
	link.LastAccessedAt = &now
	return link, nil
}

// ResolveShare resolves the token and loads the plan it points to.
func (s *ShareService) ResolveShare(ctx context.Context, token string) (*models.ShareLink, *models.Plan, error) {
	link, err := s.GetShareByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.repomanager.Plans(s.db).Get(ctx, link.PlanID)
	if err != nil {
		return nil, nil, err
	}
	return link, plan, nil
}

// RevokeShareLink deactivates the link. Revoking twice is not an error.
func (s *ShareService) RevokeShareLink(ctx context.Context, ownerID, shareID string) error {
	if _, err := s.ownedLink(ctx, ownerID, shareID); err != nil {
		return err
	}
	if err := s.repomanager.ShareLinks(s.db).Deactivate(ctx, shareID, s.now()); err != nil {
		return err
	}
	s.logger.Info(ctx, "share link revoked", "share_id", shareID)
	return nil
}

// UpdateSharePermission changes the permission but keeps the token.
func (s *ShareService) UpdateSharePermission(ctx context.Context, ownerID, shareID, permission string) error {
	if !common.ValidPermission(permission) {
		return common.ErrorValidation
	}
	if _, err := s.ownedLink(ctx, ownerID, shareID); err != nil {
		return err
	}
	return s.repomanager.ShareLinks(s.db).UpdatePermission(ctx, shareID, permission, s.now())
}

// DeleteShareLink removes the link permanently.
func (s *ShareService) DeleteShareLink(ctx context.Context, ownerID, shareID string) error {
	if _, err := s.ownedLink(ctx, ownerID, shareID); err != nil {
		return err
	}
	return s.repomanager.ShareLinks(s.db).Delete(ctx, shareID)
}

// ShareURL builds the public URL for a token: <base>/shared/<token>.
func (s *ShareService) ShareURL(token string) string {
	return strings.TrimRight(s.baseURL, "/") + "/shared/" + token
}

func (s *ShareService) ownedLink(ctx context.Context, ownerID, shareID string) (*models.ShareLink, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	link, err := s.repomanager.ShareLinks(s.db).GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return link, nil
}

// Authorize checks a share token against a plan without counting an access.
func (s *ShareService) Authorize(ctx context.Context, token, planID string, needEdit bool) (string, error) {
	level := accessView
	if needEdit {
		level = accessEdit
	}
	_, perm, err := s.authorize(ctx, s.db, Actor{ShareToken: token}, planID, level)
	if errors.Is(err, common.ErrorUnauthorized) {
		return "", common.ErrorNotFound
	}
	return perm, err
}
