package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/frckbrice/auth-service/internal/models"
	pkglogger "github.com/frckbrice/auth-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(repo UserRepository) *UserService {
	logger := slog.Default()
	return NewUserService(repo, logger, pkglogger.NewAuditLogger(logger))
}

func TestUserService_GetUser(t *testing.T) {
	user := NewTestUser("user-1", "u@example.com")
	user.PasswordHash = "$2a$04$notleaked"

	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			if id == "user-1" {
				return user, nil
			}
			return nil, models.ErrNotFound
		},
	}

	svc := newTestUserService(repo)

	resp, err := svc.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.ID)
	assert.Equal(t, "u@example.com", resp.Email)

	_, err = svc.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserService_ListUsers_ClampsPagination(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &MockUserRepository{
		ListFunc: func(ctx context.Context, limit, offset int) ([]*models.User, error) {
			gotLimit, gotOffset = limit, offset
			return []*models.User{NewTestUser("user-1", "u@example.com")}, nil
		},
	}

	svc := newTestUserService(repo)

	resp, err := svc.ListUsers(context.Background(), 500, -3)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 0, gotOffset)
	assert.Len(t, resp, 1)

	_, err = svc.ListUsers(context.Background(), 50, 10)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 10, gotOffset)
}

func TestUserService_UpdateUser(t *testing.T) {
	repo := &MockUserRepository{
		UpdateProfileFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			updated := NewTestUser(id, "u@example.com")
			updated.Username = user.Username
			updated.FirstName = user.FirstName
			updated.LastName = user.LastName
			return updated, nil
		},
	}

	svc := newTestUserService(repo)

	resp, err := svc.UpdateUser(context.Background(), "user-1", "  renamed  ", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "renamed", resp.Username)
	assert.Equal(t, "Ada", resp.FirstName)

	_, err = svc.UpdateUser(context.Background(), "user-1", "   ", "", "")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUserService_DeleteUser(t *testing.T) {
	deleted := ""
	repo := &MockUserRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			if id != "user-1" {
				return models.ErrNotFound
			}
			deleted = id
			return nil
		},
	}

	svc := newTestUserService(repo)

	require.NoError(t, svc.DeleteUser(context.Background(), "user-1", "admin-1"))
	assert.Equal(t, "user-1", deleted)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), "missing", "admin-1"), models.ErrNotFound)
}

func TestUserService_BlockUser_RevokesRefreshTokens(t *testing.T) {
	var blocked *bool
	bumped := false
	repo := &MockUserRepository{
		SetBlockedFunc: func(ctx context.Context, id string, b bool) error {
			blocked = &b
			return nil
		},
		BumpRefreshTokenVersionFunc: func(ctx context.Context, id string) (int, error) {
			bumped = true
			return 1, nil
		},
	}

	svc := newTestUserService(repo)
	require.NoError(t, svc.BlockUser(context.Background(), "user-1", "admin-1"))

	require.NotNil(t, blocked)
	assert.True(t, *blocked)
	assert.True(t, bumped, "blocking must revoke outstanding refresh tokens")
}

func TestUserService_UnblockUser(t *testing.T) {
	var blocked *bool
	repo := &MockUserRepository{
		SetBlockedFunc: func(ctx context.Context, id string, b bool) error {
			blocked = &b
			return nil
		},
	}

	svc := newTestUserService(repo)
	require.NoError(t, svc.UnblockUser(context.Background(), "user-1", "admin-1"))

	require.NotNil(t, blocked)
	assert.False(t, *blocked)
}

func TestUserService_BlockUser_UnknownUser(t *testing.T) {
	repo := &MockUserRepository{
		SetBlockedFunc: func(ctx context.Context, id string, b bool) error {
			return models.ErrNotFound
		},
	}

	svc := newTestUserService(repo)
	assert.ErrorIs(t, svc.BlockUser(context.Background(), "missing", "admin-1"), models.ErrNotFound)
}
