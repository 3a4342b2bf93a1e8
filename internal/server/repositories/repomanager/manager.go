package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ideaforge/internal/dbx"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/collaborators"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/plans"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/sharelinks"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/versions"
)

// RepositoryManager vends repositories bound to a DBTX, so the same service
// code runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Plans(db dbx.DBTX) plans.Repository
	Versions(db dbx.DBTX) versions.Repository
	ShareLinks(db dbx.DBTX) sharelinks.Repository
	Collaborators(db dbx.DBTX) collaborators.Repository
}
