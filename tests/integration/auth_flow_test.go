package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string   `json:"id"`
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	} `json:"user"`
}

func TestAuthFlow_RegisterLoginRefreshLogout(t *testing.T) {
	db := requireDB(t)
	ts := NewTestServer(db.DB)
	defer ts.Close()

	// Register
	resp, err := ts.PostJSON("/auth/register", "", map[string]string{
		"email":    "flow@example.com",
		"username": "flowuser",
		"password": "pw123456",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, DecodeBody(resp, &profile))
	assert.Equal(t, "flow@example.com", profile.Email)

	// Login
	resp, err = ts.PostJSON("/auth/login", "", map[string]string{
		"email":    "flow@example.com",
		"password": "pw123456",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens authResponse
	require.NoError(t, DecodeBody(resp, &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	// Refresh rotates the pair; the old refresh token dies
	resp, err = ts.PostJSON("/auth/refresh-token", tokens.AccessToken, map[string]string{
		"refresh_token": tokens.RefreshToken,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rotated authResponse
	require.NoError(t, DecodeBody(resp, &rotated))
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	resp, err = ts.PostJSON("/auth/refresh-token", rotated.AccessToken, map[string]string{
		"refresh_token": tokens.RefreshToken,
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "replayed refresh token must be rejected")

	// Logout revokes the rotated refresh token too
	resp, err = ts.PostJSON("/auth/logout", rotated.AccessToken, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.PostJSON("/auth/refresh-token", rotated.AccessToken, map[string]string{
		"refresh_token": rotated.RefreshToken,
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthFlow_MissingAndForgedCredentials(t *testing.T) {
	db := requireDB(t)
	ts := NewTestServer(db.DB)
	defer ts.Close()

	// No token at all: 401
	resp, err := ts.PostJSON("/auth/logout", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A forged token: 403
	resp, err = ts.PostJSON("/auth/logout", "for.ged.token", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuthFlow_PasswordReset(t *testing.T) {
	db := requireDB(t)
	ts := NewTestServer(db.DB)
	defer ts.Close()

	ctx := t.Context()
	_, err := SeedUser(ctx, db.Pool, "reset-flow@example.com", "old-password", []string{"user"})
	require.NoError(t, err)

	// Unknown email: same response, no email sent
	resp, err := ts.PostJSON("/auth/forgot-password", "", map[string]string{
		"email": "nobody@example.com",
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, ts.Email.SentTokens)

	// Known email: token is generated and mailed
	resp, err = ts.PostJSON("/auth/forgot-password", "", map[string]string{
		"email": "reset-flow@example.com",
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, ts.Email.SentTokens, 1)
	token := ts.Email.SentTokens[0]

	// Consume the token
	resp, err = ts.PostJSON("/auth/reset-password", "", map[string]string{
		"token":        token,
		"new_password": "pw123456",
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Token is single-use
	resp, err = ts.PostJSON("/auth/reset-password", "", map[string]string{
		"token":        token,
		"new_password": "pw7654321",
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Old password no longer works, the new one does
	resp, err = ts.PostJSON("/auth/login", "", map[string]string{
		"email":    "reset-flow@example.com",
		"password": "old-password",
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = ts.PostJSON("/auth/login", "", map[string]string{
		"email":    "reset-flow@example.com",
		"password": "pw123456",
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthFlow_LoginThrottle(t *testing.T) {
	db := requireDB(t)
	ts := NewTestServer(db.DB)
	defer ts.Close()

	ctx := t.Context()
	_, err := SeedUser(ctx, db.Pool, "throttle@example.com", "pw123456", []string{"user"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		resp, err := ts.PostJSON("/auth/login", "", map[string]string{
			"email":    "throttle@example.com",
			"password": "wrong-password",
		})
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// Sixth attempt is throttled even with the right password
	resp, err := ts.PostJSON("/auth/login", "", map[string]string{
		"email":    "throttle@example.com",
		"password": "pw123456",
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestAuthFlow_AdminUserManagement(t *testing.T) {
	db := requireDB(t)
	ts := NewTestServer(db.DB)
	defer ts.Close()

	ctx := t.Context()
	admin, err := SeedUser(ctx, db.Pool, "admin@example.com", "pw123456", []string{"user", "admin"})
	require.NoError(t, err)
	target, err := SeedUser(ctx, db.Pool, "target@example.com", "pw123456", []string{"user"})
	require.NoError(t, err)

	adminToken, err := ts.Tokens.GenerateAccessToken(admin)
	require.NoError(t, err)
	targetToken, err := ts.Tokens.GenerateAccessToken(target)
	require.NoError(t, err)

	// Plain users cannot reach the admin surface
	resp, err := ts.Do(http.MethodGet, "/users", targetToken)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admins can
	resp, err = ts.Do(http.MethodGet, "/users", adminToken)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Count int `json:"count"`
	}
	require.NoError(t, DecodeBody(resp, &listing))
	assert.Equal(t, 2, listing.Count)

	// Blocking takes effect on the target's very next request
	resp, err = ts.PostJSON("/users/"+target.ID+"/block", adminToken, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.PostJSON("/auth/logout", targetToken, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "blocked accounts fail the live guard")

	// And blocked accounts cannot log back in
	resp, err = ts.PostJSON("/auth/login", "", map[string]string{
		"email":    "target@example.com",
		"password": "pw123456",
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Unblock restores access
	resp, err = ts.PostJSON("/users/"+target.ID+"/unblock", adminToken, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.PostJSON("/auth/login", "", map[string]string{
		"email":    "target@example.com",
		"password": "pw123456",
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
