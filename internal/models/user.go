package models

import (
	"time"
)

type User struct {
	ID                  string
	Email               string
	Username            string
	FirstName           string
	LastName            string
	PasswordHash        string
	Roles               []string // e.g., "user", "admin"
	IsBlocked           bool
	RefreshTokenVersion int        // bumped to invalidate all outstanding refresh tokens
	ResetToken          *string    // pending password-reset token, nil when none
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
