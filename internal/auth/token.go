package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/frckbrice/auth-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Typed verification failures. Expiry is distinct from forgery so the HTTP
// layer can report them separately.
var (
	ErrTokenExpired            = errors.New("token has expired")
	ErrTokenSignatureInvalid   = errors.New("token signature is invalid")
	ErrTokenMalformed          = errors.New("token is malformed")
	ErrUnexpectedSigningMethod = errors.New("unexpected token signing method")
)

// AccessClaims are embedded in short-lived access tokens. The roles and
// block-status fields are a snapshot taken at issue time.
type AccessClaims struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	IsBlocked bool     `json:"is_blocked"`
	jwt.RegisteredClaims
}

// RefreshClaims are embedded in long-lived refresh tokens. TokenVersion must
// match the user record's current refresh_token_version at redemption time;
// that comparison belongs to the use-case layer, not the TokenManager.
type RefreshClaims struct {
	UserID       string `json:"user_id"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies JWTs. Access and refresh tokens are
// signed with separate secrets so one class can never stand in for the
// other. Verification is stateless.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateAccessToken creates a short-lived access token carrying the user's
// identity, roles, and block status.
func (tm *TokenManager) GenerateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Roles:     user.Roles,
		IsBlocked: user.IsBlocked,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// GenerateRefreshToken creates a long-lived refresh token bound to the
// user's current refresh token version.
func (tm *TokenManager) GenerateRefreshToken(userID string, tokenVersion int) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		UserID:       userID,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.refreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return tokenString, nil
}

// ValidateAccessToken verifies signature and expiry and returns the claims.
func (tm *TokenManager) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := tm.parse(tokenString, claims, tm.accessSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// ValidateRefreshToken verifies signature and expiry and returns the claims.
// The embedded version still has to be compared against the user record by
// the caller.
func (tm *TokenManager) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := tm.parse(tokenString, claims, tm.refreshSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func (tm *TokenManager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Reject algorithm substitution, including "none"
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return classifyTokenError(err)
	}
	if !token.Valid {
		return ErrTokenMalformed
	}
	return nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignatureInvalid
	case errors.Is(err, ErrUnexpectedSigningMethod):
		return ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenMalformed
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
