package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"task_manager/internal/cli"
	"task_manager/internal/config"
	"task_manager/internal/db"
	"task_manager/internal/domain"
	"task_manager/internal/logger"
	"task_manager/internal/repository"
	"task_manager/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{Open: func(ctx context.Context) (*cli.Backend, error) {
		return openBackend(ctx, cfg)
	}}
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func openBackend(ctx context.Context, cfg *config.Config) (*cli.Backend, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if cfg.JWTSecret != "" {
		service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	audit := service.NewAuditService(repository.NewAuditRepository(pool))
	auth := service.NewAuthService(repository.NewUserRepository(pool), repository.NewRoleRepository(pool), audit)
	return &cli.Backend{
		Accounts:   tokenGuard{auth, cfg.JWTSecret != ""},
		Migrations: migrator{pool},
		Close:      pool.Close,
	}, nil
}

// tokenGuard refuses to sign tokens when no secret is configured.
type tokenGuard struct {
	*service.AuthService
	canSign bool
}

func (g tokenGuard) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if !g.canSign {
		return "", nil, errors.New("JWT_SECRET is not set")
	}
	return g.AuthService.Login(ctx, email, password)
}

type migrator struct{ pool *pgxpool.Pool }

func (m migrator) Pending(ctx context.Context) ([]string, error) {
	pending, err := db.Pending(ctx, m.pool)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(pending))
	for _, p := range pending {
		names = append(names, p.Name)
	}
	return names, nil
}

func (m migrator) Apply(ctx context.Context) ([]string, error) {
	return db.Migrate(ctx, m.pool)
}
