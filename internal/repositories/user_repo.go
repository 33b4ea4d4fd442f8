package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/frckbrice/auth-service/internal/database"
	"github.com/frckbrice/auth-service/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, username, first_name, last_name, password_hash, roles, is_blocked, refresh_token_version, reset_token, reset_token_expires_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.Roles, &user.IsBlocked, &user.RefreshTokenVersion,
		&user.ResetToken, &user.ResetTokenExpiresAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

// GetByResetToken looks up the user holding a pending reset token. Expiry
// is checked by the caller so expired and unknown tokens fail identically.
func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, token))
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if len(user.Roles) == 0 {
		user.Roles = []string{"user"}
	}

	query := `
		INSERT INTO users (id, email, username, first_name, last_name, password_hash, roles, is_blocked, refresh_token_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.FirstName, user.LastName,
		user.PasswordHash, user.Roles, user.IsBlocked, user.RefreshTokenVersion,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return user, nil
}

// UpdateProfile changes the mutable profile fields only; credential and
// token state go through the dedicated methods below.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, user *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET username = $2, first_name = $3, last_name = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		id, user.Username, user.FirstName, user.LastName, time.Now(),
	))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_blocked = $2, updated_at = $3 WHERE id = $1`,
		id, blocked, time.Now(),
	)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// BumpRefreshTokenVersion atomically increments the version and returns the
// new value. Every outstanding refresh token bound to an older version
// becomes stale at once.
func (r *UserRepository) BumpRefreshTokenVersion(ctx context.Context, id string) (int, error) {
	var version int
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET refresh_token_version = refresh_token_version + 1, updated_at = $2 WHERE id = $1 RETURNING refresh_token_version`,
		id, time.Now(),
	).Scan(&version)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return version, nil
}

// SetResetToken stores a pending reset token, overwriting any prior one so
// at most one reset token is active per user.
func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET reset_token = $2, reset_token_expires_at = $3, updated_at = $4 WHERE id = $1`,
		id, token, expiresAt, time.Now(),
	)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ClearResetToken drops a pending reset token without touching the
// password, used when an expired token is presented.
func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET reset_token = NULL, reset_token_expires_at = NULL, updated_at = $2 WHERE id = $1`,
		id, time.Now(),
	)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ConsumeResetToken replaces the password hash, clears the pending token,
// and bumps the refresh token version in one conditional update. The WHERE
// clause on the token makes consumption exactly-once under concurrent
// attempts: the second caller matches no row.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, id, token, newPasswordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $3,
		    reset_token = NULL,
		    reset_token_expires_at = NULL,
		    refresh_token_version = refresh_token_version + 1,
		    updated_at = $4
		WHERE id = $1 AND reset_token = $2
	`, id, token, newPasswordHash, time.Now())
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrResetTokenInvalid
	}
	return nil
}

// ClearExpiredResetTokens drops reset tokens past their expiry; called by
// the background cleanup task.
func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET reset_token = NULL, reset_token_expires_at = NULL WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at < $1`,
		before,
	)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
