package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frckbrice/auth-service/internal/auth"
	"github.com/frckbrice/auth-service/internal/models"
	pkgauth "github.com/frckbrice/auth-service/pkg/auth"
	pkglogger "github.com/frckbrice/auth-service/pkg/logger"
)

// AuthService orchestrates registration, login, refresh, and logout against
// the user-record store.
type AuthService struct {
	repo        UserRepository
	tm          *auth.TokenManager
	hasher      *pkgauth.Hasher
	throttle    *LoginThrottle
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAuthService(
	repo UserRepository,
	tm *auth.TokenManager,
	hasher *pkgauth.Hasher,
	throttle *LoginThrottle,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		hasher:      hasher,
		throttle:    throttle,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// UserResponse is the non-sensitive user representation returned over HTTP.
// It never carries the password hash or reset token.
type UserResponse struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Roles     []string `json:"roles"`
	IsBlocked bool     `json:"is_blocked"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *UserResponse `json:"user"`
}

// RegisterInput carries the registration profile.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

// Register creates a new account. The response carries the profile only,
// never a hash and never tokens; the caller logs in separately.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)

	if email == "" || username == "" || input.Password == "" {
		return nil, models.ErrBadRequest
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("registration failed: email already registered")
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check existing user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	roles := []string{"user"}
	if input.Role != "" && input.Role != "user" {
		roles = append(roles, input.Role)
	}

	user := &models.User{
		Email:               email,
		Username:            username,
		FirstName:           strings.TrimSpace(input.FirstName),
		LastName:            strings.TrimSpace(input.LastName),
		PasswordHash:        hashedPassword,
		Roles:               roles,
		IsBlocked:           false,
		RefreshTokenVersion: 0,
	}

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Unique email index caught a concurrent registration
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", createdUser.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "user_registered",
		UserID:    createdUser.ID,
		Success:   true,
	})

	return userModelToResponse(createdUser), nil
}

// Login authenticates a user and returns a token pair. Unknown email and
// wrong password fail with the same error so callers cannot enumerate
// accounts. The throttle is consulted before any hashing work.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	if err := s.throttle.Check(email); err != nil {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			IPAddress:     ipAddress,
			FailureReason: "rate_limited",
			Success:       false,
		})
		return nil, models.ErrRateLimited
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.throttle.RecordFailure(email)
			s.logger.Info("login failed: invalid credentials")
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     ipAddress,
				FailureReason: "invalid_credentials",
				Success:       false,
			})
			return nil, models.ErrInvalidCredentials
		}
		if errors.Is(err, models.ErrUpstreamUnavailable) {
			return nil, models.ErrUpstreamUnavailable
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.throttle.RecordFailure(email)
		s.logger.Info("login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			IPAddress:     ipAddress,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		return nil, models.ErrInvalidCredentials
	}

	if user.IsBlocked {
		s.logger.Info("login blocked: account is blocked", slog.String("user_id", user.ID))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			IPAddress:     ipAddress,
			FailureReason: "account_blocked",
			Success:       false,
		})
		return nil, models.ErrAccountBlocked
	}

	accessToken, err := s.tm.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.GenerateRefreshToken(user.ID, user.RefreshTokenVersion)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.throttle.RecordSuccess(email)
	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userModelToResponse(user),
	}, nil
}

// Refresh redeems a refresh token for a new token pair. Rotate-on-use: the
// version is bumped on every redemption, so the presented token (and any
// other outstanding one) cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	refreshTokenString = strings.TrimSpace(refreshTokenString)
	if refreshTokenString == "" {
		return nil, models.ErrUnauthorized
	}

	claims, err := s.tm.ValidateRefreshToken(refreshTokenString)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		// Typed token errors pass through for status mapping
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found for token refresh", slog.String("user_id", claims.UserID))
			return nil, models.ErrUnauthorized
		}
		if errors.Is(err, models.ErrUpstreamUnavailable) {
			return nil, models.ErrUpstreamUnavailable
		}
		s.logger.Error("failed to get user for token refresh", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if user.IsBlocked {
		s.logger.Info("token refresh blocked: account is blocked", slog.String("user_id", user.ID))
		return nil, models.ErrAccountBlocked
	}

	if claims.TokenVersion != user.RefreshTokenVersion {
		s.logger.Warn("refresh attempt with stale token version",
			slog.String("user_id", user.ID),
			slog.Int("token_version", claims.TokenVersion),
			slog.Int("current_version", user.RefreshTokenVersion))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "refresh_failed",
			UserID:        user.ID,
			FailureReason: "stale_token_version",
			Success:       false,
		})
		return nil, models.ErrStaleToken
	}

	newVersion, err := s.repo.BumpRefreshTokenVersion(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to rotate refresh token version", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	accessToken, err := s.tm.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	newRefreshToken, err := s.tm.GenerateRefreshToken(user.ID, newVersion)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("token refreshed", slog.String("user_id", user.ID))

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         userModelToResponse(user),
	}, nil
}

// Logout revokes every outstanding refresh token by bumping the version.
// The access token is left to expire on its own short TTL.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if _, err := s.repo.BumpRefreshTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to revoke refresh tokens", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user logged out", slog.String("user_id", userID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "logout",
		UserID:    userID,
		Success:   true,
	})
	return nil
}

func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Roles:     user.Roles,
		IsBlocked: user.IsBlocked,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}
