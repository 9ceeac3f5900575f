package service

import (
	"context"
	"errors"
	"strings"

	"task_manager/internal/domain"
	"task_manager/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// AuthService is the credential store: registration, login and password changes.
type AuthService struct {
	users repository.UserRepo
	roles repository.RoleRepo
	audit *AuditService
	cost  int
}

func NewAuthService(users repository.UserRepo, roles repository.RoleRepo, audit *AuditService) *AuthService {
	return &AuthService{users: users, roles: roles, audit: audit, cost: bcryptCost}
}

// SetHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) SetHashCost(cost int) { s.cost = cost }

// Register creates a user with the named role.
func (s *AuthService) Register(ctx context.Context, in domain.RegisterInput, roleName string) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := requireFields(
		field{"name", has(in.Name)},
		field{"password", in.Password != ""},
		field{"email", has(in.Email)},
	); err != nil {
		return nil, err
	}
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr("get user by email", err, nil, nil)
	}

	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return nil, storeErr("get role", err, domain.ErrRoleNotFound, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		RoleName:     role.Name,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storeErr("create user", err, nil, domain.ErrEmailInUse)
	}

	s.audit.Log(ctx, u.ID, domain.AuditActionRegister, domain.AuditCategoryAuth, map[string]interface{}{"role": role.Name})
	return u, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if err := requireFields(
		field{"email", has(email)},
		field{"password", password != ""},
	); err != nil {
		return "", nil, err
	}

	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, storeErr("get user by email", err, nil, nil)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := GenerateJWT(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// ResolveToken maps a bearer token to its user id.
func (s *AuthService) ResolveToken(token string) (string, error) {
	id, err := ParseJWT(token)
	if err != nil {
		return "", domain.ErrInvalidToken
	}
	return id, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get user", err, domain.ErrUserNotFound, nil)
	}
	return u, nil
}

// IsAdmin looks up the user's role name.
func (s *AuthService) IsAdmin(ctx context.Context, id string) (bool, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsAdmin(), nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := requireFields(
		field{"oldPassword", oldPassword != ""},
		field{"newPassword", newPassword != ""},
	); err != nil {
		return err
	}

	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return storeErr("update password", err, domain.ErrUserNotFound, nil)
	}

	s.audit.Log(ctx, userID, domain.AuditActionPasswordChange, domain.AuditCategoryAuth, nil)
	return nil
}
