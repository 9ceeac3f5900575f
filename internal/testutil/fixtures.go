package testutil

import (
	"context"
	"testing"

	"task_manager/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// SeedUser stores a user directly, bypassing password hashing.
func SeedUser(t *testing.T, s *Store, name string, admin bool) *domain.User {
	t.Helper()
	roleID := UserRoleID
	if admin {
		roleID = AdminRoleID
	}
	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "unused",
		RoleID:       roleID,
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	got, err := s.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	return got
}

func SeedCategory(t *testing.T, s *Store, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{ID: uuid.NewString(), Name: name}
	require.NoError(t, s.Categories().Create(context.Background(), c))
	return c
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
