package services

import (
	"context"
	"time"

	"github.com/frckbrice/auth-service/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc                 func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc              func(ctx context.Context, email string) (*models.User, error)
	GetByResetTokenFunc         func(ctx context.Context, token string) (*models.User, error)
	ListFunc                    func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CreateFunc                  func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfileFunc           func(ctx context.Context, id string, user *models.User) (*models.User, error)
	DeleteFunc                  func(ctx context.Context, id string) error
	SetBlockedFunc              func(ctx context.Context, id string, blocked bool) error
	BumpRefreshTokenVersionFunc func(ctx context.Context, id string) (int, error)
	SetResetTokenFunc           func(ctx context.Context, id, token string, expiresAt time.Time) error
	ClearResetTokenFunc         func(ctx context.Context, id string) error
	ConsumeResetTokenFunc       func(ctx context.Context, id, token, newPasswordHash string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	if m.GetByResetTokenFunc != nil {
		return m.GetByResetTokenFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	if m.SetBlockedFunc != nil {
		return m.SetBlockedFunc(ctx, id, blocked)
	}
	return nil
}

func (m *MockUserRepository) BumpRefreshTokenVersion(ctx context.Context, id string) (int, error) {
	if m.BumpRefreshTokenVersionFunc != nil {
		return m.BumpRefreshTokenVersionFunc(ctx, id)
	}
	return 1, nil
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, id, token, expiresAt)
	}
	return nil
}

func (m *MockUserRepository) ClearResetToken(ctx context.Context, id string) error {
	if m.ClearResetTokenFunc != nil {
		return m.ClearResetTokenFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) ConsumeResetToken(ctx context.Context, id, token, newPasswordHash string) error {
	if m.ConsumeResetTokenFunc != nil {
		return m.ConsumeResetTokenFunc(ctx, id, token, newPasswordHash)
	}
	return nil
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SendPasswordResetEmailFunc func(ctx context.Context, email, token string, expiresAt time.Time) error
	SentTo                     []string
	SentTokens                 []string
}

func (m *MockEmailSender) SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error {
	m.SentTo = append(m.SentTo, email)
	m.SentTokens = append(m.SentTokens, token)
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, token, expiresAt)
	}
	return nil
}

// NewTestUser builds a user with sensible defaults for tests
func NewTestUser(id, email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:                  id,
		Email:               email,
		Username:            "testuser",
		Roles:               []string{"user"},
		IsBlocked:           false,
		RefreshTokenVersion: 0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
