package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/slidedeck/internal/dbx"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/elements"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/presentations"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/slides"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so services decide where each statement runs.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Presentations(db dbx.DBTX) presentations.Repository
	Slides(db dbx.DBTX) slides.Repository
	Elements(db dbx.DBTX) elements.Repository
}
