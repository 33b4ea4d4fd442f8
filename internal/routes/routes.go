package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/frckbrice/auth-service/internal/auth"
	"github.com/frckbrice/auth-service/internal/handlers"
	"github.com/frckbrice/auth-service/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tokenManager *auth.TokenManager,
	users auth.UserFetcher,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes. Credential endpoints carry the per-IP limit; the
	// per-account login throttle lives in the service layer.
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/register", authHandler.Register)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/forgot-password", authHandler.ForgotPassword)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/reset-password", authHandler.ResetPassword)

	// Protected routes: valid access token plus a live not-blocked check
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))
		r.Use(auth.RequireNotBlocked(users))

		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/refresh-token", authHandler.Refresh)

		// Admin-only user management
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(users, "admin"))

			r.Get("/users", userHandler.ListUsers)
			r.Get("/users/{id}", userHandler.GetUser)
			r.Put("/users/{id}", userHandler.UpdateUser)
			r.Delete("/users/{id}", userHandler.DeleteUser)
			r.Post("/users/{id}/block", userHandler.BlockUser)
			r.Post("/users/{id}/unblock", userHandler.UnblockUser)
		})
	})
}
