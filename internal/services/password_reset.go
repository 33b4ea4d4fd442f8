package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frckbrice/auth-service/internal/models"
	pkgauth "github.com/frckbrice/auth-service/pkg/auth"
	pkglogger "github.com/frckbrice/auth-service/pkg/logger"
)

// PasswordResetService drives the reset state machine:
// NoResetPending -> ResetRequested -> (Consumed | Expired).
type PasswordResetService struct {
	repo        UserRepository
	hasher      *pkgauth.Hasher
	email       EmailSender
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	tokenExpiry time.Duration
	sendTimeout time.Duration
}

func NewPasswordResetService(
	repo UserRepository,
	hasher *pkgauth.Hasher,
	email EmailSender,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	tokenExpiry time.Duration,
	sendTimeout time.Duration,
) *PasswordResetService {
	return &PasswordResetService{
		repo:        repo,
		hasher:      hasher,
		email:       email,
		logger:      logger,
		auditLogger: auditLogger,
		tokenExpiry: tokenExpiry,
		sendTimeout: sendTimeout,
	}
}

// RequestReset starts a reset for the account behind the email. Unknown
// addresses return nil so the response shape never reveals whether an
// account exists; no email is sent in that case. A pending token from an
// earlier request is overwritten: at most one reset token is active per
// user.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.ErrBadRequest
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email",
				slog.String("email", pkglogger.SanitizedEmail(email)))
			return nil
		}
		if errors.Is(err, models.ErrUpstreamUnavailable) {
			return models.ErrUpstreamUnavailable
		}
		s.logger.Error("failed to look up user for password reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	token, err := pkgauth.GenerateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	expiresAt := time.Now().Add(s.tokenExpiry)
	if err := s.repo.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		if errors.Is(err, models.ErrUpstreamUnavailable) {
			return models.ErrUpstreamUnavailable
		}
		s.logger.Error("failed to persist reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	// The token is persisted before the send; if the send fails, a retried
	// request simply overwrites the pending token.
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.email.SendPasswordResetEmail(sendCtx, user.Email, token, expiresAt); err != nil {
		s.logger.Error("failed to send password reset email",
			slog.String("user_id", user.ID),
			slog.Any("error", err)) // error never carries the token
		return models.ErrUpstreamUnavailable
	}

	s.auditLogger.LogPasswordReset("reset_requested", user.ID, true)
	return nil
}

// ResetPassword consumes a reset token: replaces the password hash, clears
// the token, and bumps the refresh token version so every outstanding
// refresh token dies with the old credential.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return models.ErrResetTokenInvalid
	}

	user, err := s.repo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrResetTokenInvalid
		}
		if errors.Is(err, models.ErrUpstreamUnavailable) {
			return models.ErrUpstreamUnavailable
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if user.ResetTokenExpiresAt == nil || time.Now().After(*user.ResetTokenExpiresAt) {
		// Expired tokens are cleared on rejection; they are never retried
		if err := s.repo.ClearResetToken(ctx, user.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to clear expired reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		}
		s.auditLogger.LogPasswordReset("reset_rejected_expired", user.ID, false)
		return models.ErrResetTokenInvalid
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.ConsumeResetToken(ctx, user.ID, token, newHash); err != nil {
		if errors.Is(err, models.ErrResetTokenInvalid) {
			// Lost a race with a concurrent consume; token is single-use
			return models.ErrResetTokenInvalid
		}
		if errors.Is(err, models.ErrUpstreamUnavailable) {
			return models.ErrUpstreamUnavailable
		}
		s.logger.Error("failed to consume reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogPasswordReset("reset_consumed", user.ID, true)
	return nil
}
