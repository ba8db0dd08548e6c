package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-tracker/internal/api/http/handlers"
	"github.com/spec-kit/task-tracker/internal/auth"
	"github.com/spec-kit/task-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tasks          *handlers.TasksHandler
	AI             *handlers.AIHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginRateLimit int
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Post("/auth/login", loginRateLimiter(cfg.LoginRateLimit), cfg.Users.Login)

	tasks := api.Group("/tasks", auth.RequireAuthenticated())
	tasks.Get("/", cfg.Tasks.ListTasks)
	tasks.Get("/stats", cfg.Tasks.Stats)
	tasks.Get("/:id", cfg.Tasks.GetTask)
	tasks.Post("/", cfg.Tasks.CreateTask)
	tasks.Put("/:id", cfg.Tasks.UpdateTask)
	tasks.Delete("/:id", cfg.Tasks.DeleteTask)

	ai := api.Group("/ai", auth.RequireAuthenticated())
	ai.Post("/parse-task", cfg.AI.ParseTask)
	ai.Get("/suggestions", cfg.AI.Suggestions)
	ai.Get("/recommend-priority", cfg.AI.RecommendPriority)
	ai.Get("/productivity-insight", cfg.AI.ProductivityInsight)
	ai.Get("/status", cfg.AI.Status)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/metrics", cfg.Metrics.Snapshot)
}
