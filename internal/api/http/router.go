package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-desk/internal/api/http/handlers"
	"github.com/spec-kit/complaint-desk/internal/auth"
	"github.com/spec-kit/complaint-desk/internal/domain"
	"github.com/spec-kit/complaint-desk/internal/service"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Tasks          *handlers.TasksHandler
	Workers        *handlers.WorkersHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Get("/remembered", cfg.Auth.Remembered)
	authGroup.Delete("/remembered", cfg.Auth.Forget)
	authGroup.Post("/password/reset", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/strength", cfg.Auth.PasswordStrength)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	app.Get("/notifications/current", cfg.Notifications.Current)
	app.Delete("/notifications/:id", cfg.Notifications.Dismiss)

	app.Get("/complaints/types", cfg.Complaints.Types)
	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle)
	complaints.Post("", auth.RequireRole(domain.RoleConsumer), cfg.Complaints.Submit)
	complaints.Get("", auth.RequireRole(domain.RoleConsumer), cfg.Complaints.ListMine)
	complaints.Get("/:id", cfg.Complaints.Track)

	app.Get("/workers", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Workers.List)

	tasks := app.Group("/tasks", cfg.AuthMiddleware.Handle)
	tasks.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Tasks.Assign)
	tasks.Get("", auth.RequireRole(domain.RoleAdmin, domain.RoleWorker), cfg.Tasks.List)
	tasks.Get("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleWorker), cfg.Tasks.Get)

	worker := auth.RequireRole(domain.RoleWorker)
	tasks.Post("/:id/start", worker, cfg.Tasks.Advance(service.TriggerStart))
	tasks.Post("/:id/arrive", worker, cfg.Tasks.Advance(service.TriggerArrive))
	tasks.Post("/:id/work", worker, cfg.Tasks.Advance(service.TriggerBeginWork))
	tasks.Post("/:id/complete", worker, cfg.Tasks.Advance(service.TriggerComplete))
	tasks.Delete("/:id/pending", worker, cfg.Tasks.Abandon)
}
