package handlers

import (
	"context"

	"github.com/frckbrice/auth-service/internal/models"
	"github.com/frckbrice/auth-service/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc func(ctx context.Context, input services.RegisterInput) (*services.UserResponse, error)
	LoginFunc    func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error)
	RefreshFunc  func(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	LogoutFunc   func(ctx context.Context, userID string) error
}

func (m *MockAuthService) Register(ctx context.Context, input services.RegisterInput) (*services.UserResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, ipAddress)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*services.AuthResponse, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Logout(ctx context.Context, userID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID)
	}
	return nil
}

// MockPasswordResetService implements PasswordResetServiceInterface for testing
type MockPasswordResetService struct {
	RequestResetFunc  func(ctx context.Context, email string) error
	ResetPasswordFunc func(ctx context.Context, token, newPassword string) error
}

func (m *MockPasswordResetService) RequestReset(ctx context.Context, email string) error {
	if m.RequestResetFunc != nil {
		return m.RequestResetFunc(ctx, email)
	}
	return nil
}

func (m *MockPasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetUserFunc     func(ctx context.Context, id string) (*services.UserResponse, error)
	ListUsersFunc   func(ctx context.Context, limit, offset int) ([]*services.UserResponse, error)
	UpdateUserFunc  func(ctx context.Context, id, username, firstName, lastName string) (*services.UserResponse, error)
	DeleteUserFunc  func(ctx context.Context, id, actorID string) error
	BlockUserFunc   func(ctx context.Context, id, actorID string) error
	UnblockUserFunc func(ctx context.Context, id, actorID string) error
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*services.UserResponse, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]*services.UserResponse, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, limit, offset)
	}
	return []*services.UserResponse{}, nil
}

func (m *MockUserService) UpdateUser(ctx context.Context, id, username, firstName, lastName string) (*services.UserResponse, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, username, firstName, lastName)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) DeleteUser(ctx context.Context, id, actorID string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id, actorID)
	}
	return nil
}

func (m *MockUserService) BlockUser(ctx context.Context, id, actorID string) error {
	if m.BlockUserFunc != nil {
		return m.BlockUserFunc(ctx, id, actorID)
	}
	return nil
}

func (m *MockUserService) UnblockUser(ctx context.Context, id, actorID string) error {
	if m.UnblockUserFunc != nil {
		return m.UnblockUserFunc(ctx, id, actorID)
	}
	return nil
}
