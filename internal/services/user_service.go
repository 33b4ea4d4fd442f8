package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frckbrice/auth-service/internal/models"
	pkglogger "github.com/frckbrice/auth-service/pkg/logger"
)

// UserRepository is the user-record store collaborator contract.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
	SetBlocked(ctx context.Context, id string, blocked bool) error
	BumpRefreshTokenVersion(ctx context.Context, id string) (int, error)
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	ConsumeResetToken(ctx context.Context, id, token, newPasswordHash string) error
}

// UserService handles the admin-facing user management surface.
type UserService struct {
	repo        UserRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewUserService(repo UserRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return userModelToResponse(user), nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*UserResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, userModelToResponse(user))
	}
	return responses, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id, username, firstName, lastName string) (*UserResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.ErrBadRequest
	}

	updated, err := s.repo.UpdateProfile(ctx, id, &models.User{
		Username:  username,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return userModelToResponse(updated), nil
}

func (s *UserService) DeleteUser(ctx context.Context, id, actorID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("user_deleted", id, actorID)
	return nil
}

// BlockUser marks the account blocked and revokes its refresh tokens. The
// guards read live block state, so the block applies before any access
// token expires.
func (s *UserService) BlockUser(ctx context.Context, id, actorID string) error {
	if err := s.repo.SetBlocked(ctx, id, true); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to block user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if _, err := s.repo.BumpRefreshTokenVersion(ctx, id); err != nil {
		s.logger.Error("failed to revoke refresh tokens on block", slog.String("user_id", id), slog.Any("error", err))
	}

	s.auditLogger.LogAccountAction("user_blocked", id, actorID)
	return nil
}

func (s *UserService) UnblockUser(ctx context.Context, id, actorID string) error {
	if err := s.repo.SetBlocked(ctx, id, false); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to unblock user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("user_unblocked", id, actorID)
	return nil
}
