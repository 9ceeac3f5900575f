package cli

import (
	"context"
	"errors"

	"task_manager/internal/domain"

	"github.com/spf13/cobra"
)

// Accounts is the slice of the auth service the CLI drives.
type Accounts interface {
	Register(ctx context.Context, in domain.RegisterInput, roleName string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// Migrator lists and applies schema migrations.
type Migrator interface {
	Pending(ctx context.Context) ([]string, error)
	Apply(ctx context.Context) ([]string, error)
}

// Backend holds the database-backed collaborators.
type Backend struct {
	Accounts   Accounts
	Migrations Migrator
	Close      func()
}

// App wires the commands. Open is called only by commands that need the
// database, so "events" works against a remote server without one.
type App struct {
	Open func(ctx context.Context) (*Backend, error)
}

var errNoBackend = errors.New("database is not configured")

func (a *App) backend(ctx context.Context) (*Backend, error) {
	if a.Open == nil {
		return nil, errNoBackend
	}
	return a.Open(ctx)
}

// NewRootCmd creates the top-level "taskctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Administrative tooling for the task manager API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(app),
		newUserCmd(app),
		newTokenCmd(app),
		newEventsCmd(),
	)

	return root
}
