package service

import (
	"context"
	"testing"
	"time"

	"task_manager/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, e *env, name, role string) *domain.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), domain.RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret-" + name,
	}, role)
	require.NoError(t, err)
	return u
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u := register(t, e, "alice", domain.RoleUser)
	assert.Equal(t, domain.RoleUser, u.RoleName)
	assert.NotEqual(t, "secret-alice", u.PasswordHash)

	token, logged, err := e.auth.Login(ctx, "alice@example.com", "secret-alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	id, err := e.auth.ResolveToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, _, err = e.auth.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = e.auth.Login(ctx, "ghost@example.com", "secret-alice")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = e.auth.Login(ctx, "", "")
	assert.EqualError(t, err, "Missing required fields: email, password")
}

func TestAuthService_RegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	register(t, e, "taken", domain.RoleUser)

	cases := []struct {
		name string
		in   domain.RegisterInput
		want string
	}{
		{"all missing", domain.RegisterInput{}, "Missing required fields: name, password, email"},
		{"email missing", domain.RegisterInput{Name: "bob", Password: "pw"}, "Missing required fields: email"},
		{"short name", domain.RegisterInput{Name: "b", Email: "b@example.com", Password: "pw"}, "Name must be between 2 and 24 characters"},
		{"long name", domain.RegisterInput{Name: "abcdefghijklmnopqrstuvwxy", Email: "b@example.com", Password: "pw"}, "Name must be between 2 and 24 characters"},
		{"bad email", domain.RegisterInput{Name: "bob", Email: "not-an-email", Password: "pw"}, "Invalid email format"},
		{"duplicate email", domain.RegisterInput{Name: "bob", Email: "taken@example.com", Password: "pw"}, "Email already in use"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.auth.Register(ctx, tc.in, domain.RoleUser)
			assert.EqualError(t, err, tc.want)
		})
	}

	_, err := e.auth.Register(ctx, domain.RegisterInput{Name: "bob", Email: "bob@example.com", Password: "pw"}, "superuser")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestAuthService_ChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := register(t, e, "carol", domain.RoleUser)

	err := e.auth.ChangePassword(ctx, u.ID, "nope", "next")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	err = e.auth.ChangePassword(ctx, u.ID, "", "")
	assert.EqualError(t, err, "Missing required fields: oldPassword, newPassword")

	require.NoError(t, e.auth.ChangePassword(ctx, u.ID, "secret-carol", "next"))
	_, _, err = e.auth.Login(ctx, "carol@example.com", "secret-carol")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = e.auth.Login(ctx, "carol@example.com", "next")
	assert.NoError(t, err)

	logs, err := e.audit.List(ctx, domain.AuditFilter{UserID: u.ID, Limit: 10})
	require.NoError(t, err)
	var actions []string
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Contains(t, actions, domain.AuditActionPasswordChange)
}

func TestAuthService_IsAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := register(t, e, "root", domain.RoleAdmin)
	user := register(t, e, "plain", domain.RoleUser)

	ok, err := e.auth.IsAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.auth.IsAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.auth.IsAdmin(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestJWT(t *testing.T) {
	InitJWT("test-secret", time.Hour)

	token, err := GenerateJWT("user-1")
	require.NoError(t, err)
	id, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	_, err = ParseJWT(token + "x")
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "user-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ParseJWT(signed)
	assert.Error(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "user-1"})
	signed, err = noExp.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ParseJWT(signed)
	assert.Error(t, err)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "user-1",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err = other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = ParseJWT(signed)
	assert.Error(t, err)

	assert.Panics(t, func() { InitJWT("", time.Hour) })
}
