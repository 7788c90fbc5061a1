package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/notehub/internal/dbx"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/archives"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/comments"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/likes"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/notes"
)

// RepositoryManager hands out repositories bound to a DB or a transaction so
// services can compose several of them inside one dbx.WithTx call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Notes(db dbx.DBTX) notes.Repository
	Comments(db dbx.DBTX) comments.Repository
	Likes(db dbx.DBTX) likes.Repository
	Archives(db dbx.DBTX) archives.Repository
}
