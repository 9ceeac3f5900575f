package service

import (
	"context"
	"errors"
	"strings"

	"task_manager/internal/domain"
	"task_manager/internal/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type UserService struct {
	users repository.UserRepo
	tasks repository.TaskRepo
	auth  *AuthService
	audit *AuditService
}

func NewUserService(users repository.UserRepo, tasks repository.TaskRepo, auth *AuthService, audit *AuditService) *UserService {
	return &UserService{users: users, tasks: tasks, auth: auth, audit: audit}
}

// List pages through users matching q.Search. PageInfo.Current counts the
// users seen up to and including this page.
func (s *UserService) List(ctx context.Context, q domain.UserQuery) (*domain.UserPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	q.Search = strings.TrimSpace(q.Search)

	users, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, storeErr("list users", err, nil, nil)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return &domain.UserPage{
		Edges: users,
		PageInfo: domain.PageInfo{
			HasNextPage:     q.Page*q.Limit < total,
			HasPreviousPage: q.Page > 1,
			Total:           total,
			Current:         len(users) + (q.Page-1)*q.Limit,
			Limit:           q.Limit,
		},
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.auth.GetUser(ctx, id)
}

// Create registers a user on an admin's behalf. An empty role means "user".
func (s *UserService) Create(ctx context.Context, in domain.RegisterInput, roleName string) (*domain.User, error) {
	if roleName == "" {
		roleName = domain.RoleUser
	}
	return s.auth.Register(ctx, in, roleName)
}

// Update lets a user edit themself; admins may edit anyone.
func (s *UserService) Update(ctx context.Context, id, requesterID string, patch domain.UserPatch) (*domain.User, error) {
	target, requesterIsAdmin, err := s.loadGuarded(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if err := AssertCanMutate(target.ID, requesterID, requesterIsAdmin, domain.ActionUpdate, "user"); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		target.Name = name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != target.Email {
			if other, err := s.users.GetByEmail(ctx, email); err == nil && other.ID != target.ID {
				return nil, domain.ErrEmailInUse
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, storeErr("get user by email", err, nil, nil)
			}
		}
		target.Email = email
	}

	if err := s.users.Update(ctx, target); err != nil {
		return nil, storeErr("update user", err, domain.ErrUserNotFound, domain.ErrEmailInUse)
	}
	return s.auth.GetUser(ctx, target.ID)
}

// Delete removes the user, their tasks and (by cascade) their businesses.
func (s *UserService) Delete(ctx context.Context, id, requesterID string) error {
	target, requesterIsAdmin, err := s.loadGuarded(ctx, id, requesterID)
	if err != nil {
		return err
	}
	if err := AssertCanMutate(target.ID, requesterID, requesterIsAdmin, domain.ActionDelete, "user"); err != nil {
		return err
	}

	if err := s.tasks.DeleteByOwner(ctx, target.ID); err != nil {
		return storeErr("delete user tasks", err, nil, nil)
	}
	if err := s.users.Delete(ctx, target.ID); err != nil {
		return storeErr("delete user", err, domain.ErrUserNotFound, nil)
	}

	if requesterID != target.ID {
		s.audit.LogAdminAction(ctx, requesterID, domain.AuditActionUserDelete, target.ID, map[string]interface{}{"email": target.Email})
	} else {
		s.audit.Log(ctx, target.ID, domain.AuditActionUserDelete, domain.AuditCategoryAuth, nil)
	}
	return nil
}

func (s *UserService) loadGuarded(ctx context.Context, id, requesterID string) (*domain.User, bool, error) {
	target, err := s.auth.GetUser(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if requesterID == target.ID {
		return target, target.IsAdmin(), nil
	}
	isAdmin, err := s.auth.IsAdmin(ctx, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return target, false, nil
		}
		return nil, false, err
	}
	return target, isAdmin, nil
}
