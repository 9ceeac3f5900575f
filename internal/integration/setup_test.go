package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"task_manager/internal/db"
	"task_manager/internal/repository"
	"task_manager/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := db.Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := db.Migrate(context.Background(), pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

// services is the production wiring over a real pool.
type services struct {
	audit      *service.AuditService
	auth       *service.AuthService
	users      *service.UserService
	tasks      *service.TaskService
	categories *service.CategoryService
	comments   *service.CommentService
	businesses *service.BusinessService
}

func newServices(pool *pgxpool.Pool, events service.EventPublisher) *services {
	service.InitJWT("integration-secret", time.Hour)

	users := repository.NewUserRepository(pool)
	tasks := repository.NewTaskRepository(pool)
	categories := repository.NewCategoryRepository(pool)
	comments := repository.NewCommentRepository(pool)

	s := &services{audit: service.NewAuditService(repository.NewAuditRepository(pool))}
	s.auth = service.NewAuthService(users, repository.NewRoleRepository(pool), s.audit)
	s.auth.SetHashCost(bcrypt.MinCost)
	s.users = service.NewUserService(users, tasks, s.auth, s.audit)
	opts := []service.TaskOption{service.WithTaskAudit(s.audit)}
	if events != nil {
		opts = append(opts, service.WithTaskEvents(events))
	}
	s.tasks = service.NewTaskService(tasks, categories, comments, opts...)
	s.categories = service.NewCategoryService(categories, tasks, s.audit)
	s.comments = service.NewCommentService(comments, tasks)
	s.businesses = service.NewBusinessService(repository.NewBusinessRepository(pool), s.auth, nil, s.audit)
	return s
}

// uniq returns a short suffix so reruns against the same database don't collide.
func uniq() string {
	return uuid.NewString()[:8]
}
