package repomanager

import (
	"context"
	"database/sql"

	"github.com/dsmirnov/bookshelf/internal/dbx"
	"github.com/dsmirnov/bookshelf/internal/server/repositories/books"
	"github.com/dsmirnov/bookshelf/internal/server/repositories/ratings"
	"github.com/dsmirnov/bookshelf/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a *sql.DB or a transaction,
// so services can run several repository calls inside one dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Books(db dbx.DBTX) books.Repository
	Ratings(db dbx.DBTX) ratings.Repository
}
