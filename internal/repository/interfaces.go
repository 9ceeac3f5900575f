package repository

import (
	"context"
	"time"

	"task_manager/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, q domain.UserQuery) ([]*domain.User, int, error)
	Update(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

type RoleRepo interface {
	GetByName(ctx context.Context, name string) (*domain.Role, error)
}

type CategoryRepo interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	// NamesByIDs maps each existing id to its name; unknown ids are absent.
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// TaskRepo stores task rows only; trees are assembled by the service.
type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListRoots returns parentless tasks, all owners when ownerID is empty.
	ListRoots(ctx context.Context, ownerID string) ([]*domain.Task, error)
	// ListChildren returns the direct children of every given parent in creation order.
	ListChildren(ctx context.Context, parentIDs []string) ([]*domain.Task, error)
	ListByCategory(ctx context.Context, categoryID, ownerID string) ([]*domain.Task, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	MarkNotified(ctx context.Context, id string, at time.Time) error
	DeleteChildren(ctx context.Context, parentID string) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

type CommentRepo interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	List(ctx context.Context) ([]*domain.Comment, error)
	ListByTasks(ctx context.Context, taskIDs []string) ([]*domain.Comment, error)
	Update(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, id string) error
	DeleteByTask(ctx context.Context, taskID string) error
}

type BusinessRepo interface {
	Create(ctx context.Context, b *domain.Business) error
	GetByID(ctx context.Context, id string) (*domain.Business, error)
	GetByEmail(ctx context.Context, email string) (*domain.Business, error)
	// List filters by status unless status is empty.
	List(ctx context.Context, status domain.BusinessStatus) ([]*domain.Business, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Business, error)
	Update(ctx context.Context, b *domain.Business) error
	UpdateStatus(ctx context.Context, id string, status domain.BusinessStatus) error
	Delete(ctx context.Context, id string) error
}

type AuditRepo interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, f domain.AuditFilter) ([]*domain.AuditLog, error)
}

var (
	_ UserRepo     = (*UserRepository)(nil)
	_ RoleRepo     = (*RoleRepository)(nil)
	_ CategoryRepo = (*CategoryRepository)(nil)
	_ TaskRepo     = (*TaskRepository)(nil)
	_ CommentRepo  = (*CommentRepository)(nil)
	_ BusinessRepo = (*BusinessRepository)(nil)
	_ AuditRepo    = (*AuditRepository)(nil)
)
