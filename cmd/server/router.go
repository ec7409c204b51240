package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/loujainjnad/taskboard-api/internal/api"
	apiMiddleware "github.com/loujainjnad/taskboard-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceID)

	if limiter := apiMiddleware.NewRateLimiter(
		app.config.Server.RateLimitPerSecond,
		app.config.Server.RateLimitBurst,
	); limiter != nil {
		r.Use(limiter.Limit)
	}

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordHasher)
	projectHandler := api.NewProjectHandler(app.projectService)
	taskHandler := api.NewTaskHandler(app.taskService)
	inviteHandler := api.NewInviteHandler(app.inviteService)
	notificationHandler := api.NewNotificationHandler(app.notificationService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Invite preview works with or without a token in hand.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.AuthenticateOptional)
			r.Get("/invites/{token}", inviteHandler.Preview)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Project endpoints
			r.Post("/projects", projectHandler.Create)
			r.Get("/projects", projectHandler.List)
			r.Get("/projects/{projectID}", projectHandler.Get)
			r.Patch("/projects/{projectID}", projectHandler.Update)
			r.Delete("/projects/{projectID}/members/{userID}", projectHandler.RemoveMember)

			// Invite endpoints
			r.Post("/projects/{projectID}/invites", inviteHandler.Issue)
			r.Get("/projects/{projectID}/invites", inviteHandler.ListForProject)
			r.Post("/invites/{token}/accept", inviteHandler.Accept)
			r.Post("/invites/{token}/reject", inviteHandler.Reject)

			// Task endpoints
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/{taskID}", taskHandler.Get)
			r.Patch("/tasks/{taskID}", taskHandler.Update)
			r.Delete("/tasks/{taskID}", taskHandler.Delete)

			// Notification endpoints
			r.Get("/notifications", notificationHandler.List)
			r.Post("/notifications/{notificationID}/read", notificationHandler.MarkRead)
			r.Post("/notifications/read-all", notificationHandler.MarkAllRead)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
