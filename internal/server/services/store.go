// Package services implements the server-side operations: the version ledger,
// plan persistence, the share-link registry, presence tracking, the chat
// relay and plan export.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/dbx"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ideaforge/internal/timex"
)

// Actor identifies the caller of an operation. UserID comes from a verified
// bearer token; ShareToken from a share link. Either or both may be empty.
type Actor struct {
	UserID     string
	ShareToken string
}

type accessLevel int

const (
	accessView accessLevel = iota
	accessEdit
	accessOwner
)

// store bundles what every service needs to reach the database.
type store struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       timex.Clock
	withTx      dbx.TxFunc
}

func newStore(db *sql.DB, rm repomanager.RepositoryManager, clock timex.Clock) store {
	return store{db: db, repomanager: rm, clock: clock, withTx: dbx.WithTx}
}

func (s store) now() time.Time {
	return s.clock.Now()
}

// authorize loads the plan and checks that the actor may act on it at the
// given level. It returns the permission the actor holds ("edit" for owners).
//
// A share token that is unknown, revoked, expired or bound to another plan
// yields ErrorNotFound, the same as a missing plan.
func (s store) authorize(ctx context.Context, db dbx.DBTX, actor Actor, planID string, level accessLevel) (*models.Plan, string, error) {
	if actor.UserID == "" && actor.ShareToken == "" {
		return nil, "", common.ErrorUnauthorized
	}

	plan, err := s.repomanager.Plans(db).Get(ctx, planID)
	if err != nil {
		return nil, "", err
	}

	if actor.UserID != "" && plan.OwnerID == actor.UserID {
		return plan, common.PermissionEdit, nil
	}

	if actor.ShareToken == "" {
		return nil, "", common.ErrorNotFound
	}

	link, err := s.repomanager.ShareLinks(db).FindUsableByToken(ctx, actor.ShareToken, s.now())
	if errors.Is(err, common.ErrorNotFound) || (err == nil && link.PlanID != planID) {
		return nil, "", common.ErrorNotFound
	}
	if err != nil {
		return nil, "", err
	}

	switch {
	case level == accessOwner:
		return nil, "", common.ErrorForbidden
	case level == accessEdit && link.Permission != common.PermissionEdit:
		return nil, "", common.ErrorForbidden
	}
	return plan, link.Permission, nil
}
