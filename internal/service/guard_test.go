package service

import (
	"testing"

	"task_manager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertCanMutate(t *testing.T) {
	tests := []struct {
		name      string
		owner     string
		requester string
		admin     bool
		wantErr   bool
	}{
		{"owner", "u1", "u1", false, false},
		{"admin on someone else", "u1", "u2", true, false},
		{"admin on own", "u1", "u1", true, false},
		{"stranger", "u1", "u2", false, true},
		{"orphaned resource", "", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertCanMutate(tt.owner, tt.requester, tt.admin, domain.ActionUpdate, "business")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
		})
	}
}

func TestForbiddenErrorMessage(t *testing.T) {
	err := AssertCanMutate("a", "b", false, domain.ActionDelete, "user")
	assert.EqualError(t, err, "Deleting user is forbidden")

	err = AssertCanMutate("a", "b", false, domain.ActionUpdate, "business")
	assert.EqualError(t, err, "Updating business is forbidden")
}
