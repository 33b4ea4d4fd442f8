package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication rejections. Invalid credentials and blocked accounts
	// must stay indistinguishable to outside callers.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrRateLimited        = errors.New("too many login attempts")

	// Refresh token whose embedded version no longer matches the user record
	ErrStaleToken = errors.New("refresh token has been revoked")

	// Password-reset token missing, consumed, or past its expiry
	ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

	// Collaborator (store, email) unavailable or timed out; retryable
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
