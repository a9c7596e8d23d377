// Package cli implements slidectl, the operator command line: applying
// schema migrations and creating accounts without going through the API.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

// ErrUnknownCommand is returned by Run for anything but the known commands.
var ErrUnknownCommand = errors.New("unknown command")

const usage = `usage: slidectl <command> [flags]

commands:
  migrate       apply pending schema migrations
  create-user   register an account (password is read from the terminal)

flags are the server's: -c config.json, -d dsn, ...`

type Migrator interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
}

type Registrar interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
}

type App struct {
	db       *sql.DB
	migrator Migrator
	users    Registrar
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(db *sql.DB, m Migrator, users Registrar, in io.Reader, out io.Writer) *App {
	return &App{db: db, migrator: m, users: users, reader: bufio.NewReader(in), out: out}
}

// Run executes command.
func (a *App) Run(ctx context.Context, command string) error {
	switch command {
	case "migrate":
		return a.Migrate(ctx)
	case "create-user":
		return a.CreateUser(ctx)
	case "", "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		fmt.Fprintln(a.out, usage)
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

func (a *App) Migrate(ctx context.Context) error {
	if err := a.migrator.RunMigrations(ctx, a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(a.out, "Migrations applied")
	return nil
}

// CreateUser prompts for the account details and registers the account.
// The password is asked twice.
func (a *App) CreateUser(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	u, err := a.users.Register(ctx, username, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created user %s (%s)\n", u.UserName, u.ID)
	return nil
}
