package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr("op", nil))
	assert.ErrorIs(t, mapErr("op", pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapErr("op", fmt.Errorf("wrapped: %w", pgx.ErrNoRows)), ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	err := mapErr("create user", dup)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "users_email_key")

	fk := &pgconn.PgError{Code: "23503"}
	assert.ErrorIs(t, mapErr("delete category", fk), ErrReferenced)

	other := errors.New("boom")
	err = mapErr("list", other)
	assert.ErrorIs(t, err, other)
	assert.Equal(t, "list: boom", err.Error())
}

func TestExecOne(t *testing.T) {
	assert.ErrorIs(t, execOne("op", pgconn.NewCommandTag("DELETE 0"), nil), ErrNotFound)
	assert.NoError(t, execOne("op", pgconn.NewCommandTag("DELETE 1"), nil))
	assert.ErrorIs(t, execOne("op", pgconn.CommandTag{}, pgx.ErrNoRows), ErrNotFound)
}
