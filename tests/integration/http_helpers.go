package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/frckbrice/auth-service/internal/auth"
	"github.com/frckbrice/auth-service/internal/database"
	"github.com/frckbrice/auth-service/internal/handlers"
	middlewareCustom "github.com/frckbrice/auth-service/internal/middleware"
	"github.com/frckbrice/auth-service/internal/repositories"
	"github.com/frckbrice/auth-service/internal/routes"
	"github.com/frckbrice/auth-service/internal/services"
	pkgauth "github.com/frckbrice/auth-service/pkg/auth"
	pkghttp "github.com/frckbrice/auth-service/pkg/http"
	pkglogger "github.com/frckbrice/auth-service/pkg/logger"
)

// TestServer wraps httptest.Server with a real database and a captured
// email sender.
type TestServer struct {
	Server   *httptest.Server
	DB       *database.DB
	Email    *services.MockEmailSender
	UserRepo *repositories.UserRepository
	Throttle *services.LoginThrottle
	Tokens   *auth.TokenManager
}

// NewTestServer wires the full HTTP stack against the given database. Email
// sending is captured in memory; everything else is real.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	userRepo := repositories.NewUserRepository(db)
	mockEmail := &services.MockEmailSender{}

	tokenManager := auth.NewTokenManager(
		"test-access-secret-32-chars-long!!",
		"test-refresh-secret-32-chars-long!",
		15*time.Minute,
		7*24*time.Hour,
	)

	hasher := pkgauth.NewHasher(4)
	auditLogger := pkglogger.NewAuditLogger(logger)
	throttle := services.NewLoginThrottle(services.ThrottleConfig{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
	}, logger)

	authService := services.NewAuthService(userRepo, tokenManager, hasher, throttle, logger, auditLogger)
	resetService := services.NewPasswordResetService(
		userRepo, hasher, mockEmail, logger, auditLogger,
		30*time.Minute, time.Second,
	)
	userService := services.NewUserService(userRepo, logger, auditLogger)

	ipConfig := &pkghttp.IPConfig{}
	authHandler := handlers.NewAuthHandler(authService, resetService, ipConfig)
	userHandler := handlers.NewUserHandler(userService)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	router.Use(chiMiddleware.Recoverer)
	routes.RegisterRoutes(router, authHandler, userHandler, tokenManager, userRepo)

	return &TestServer{
		Server:   httptest.NewServer(router),
		DB:       db,
		Email:    mockEmail,
		UserRepo: userRepo,
		Throttle: throttle,
		Tokens:   tokenManager,
	}
}

// Close shuts the test server down
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// PostJSON sends a JSON POST with an optional bearer token
func (ts *TestServer) PostJSON(path, bearer string, body any) (*http.Response, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return ts.Server.Client().Do(req)
}

// Do sends a request with an optional bearer token
func (ts *TestServer) Do(method, path, bearer string) (*http.Response, error) {
	req, err := http.NewRequest(method, ts.Server.URL+path, nil)
	if err != nil {
		return nil, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return ts.Server.Client().Do(req)
}

// DecodeBody decodes a JSON response body into out
func DecodeBody(resp *http.Response, out any) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %q: %w", string(data), err)
	}
	return nil
}
