package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophnet/internal/dbx"
	"github.com/dmitrijs2005/gophnet/internal/server/repositories/follows"
	"github.com/dmitrijs2005/gophnet/internal/server/repositories/publications"
	"github.com/dmitrijs2005/gophnet/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Follows(db dbx.DBTX) follows.Repository
	Publications(db dbx.DBTX) publications.Repository
}
