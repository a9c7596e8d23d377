// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/slidedeck/internal/dbx"
	"github.com/dmitrijs2005/slidedeck/internal/server/migrations"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/elements"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/presentations"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/slides"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Presentations(db dbx.DBTX) presentations.Repository {
	return presentations.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Slides(db dbx.DBTX) slides.Repository {
	return slides.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Elements(db dbx.DBTX) elements.Repository {
	return elements.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations in order, recording each in
// goose's version table.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
