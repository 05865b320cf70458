// Package repomanager vends repository implementations bound to a DBTX, so
// services can run the same repository code against *sql.DB or an open
// transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/trainerhub/portal/internal/dbx"
	"github.com/trainerhub/portal/internal/server/repositories/onetimecodes"
	"github.com/trainerhub/portal/internal/server/repositories/refreshtokens"
	"github.com/trainerhub/portal/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	OneTimeCodes(db dbx.DBTX) onetimecodes.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
