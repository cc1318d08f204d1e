package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/agent-console/internal/api/http/handlers"
	"github.com/spec-kit/agent-console/internal/session"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Sessions *handlers.SessionHandler
	Tickets  *handlers.TicketsHandler
	Users    *handlers.UsersHandler
	Session  *session.Manager
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/sessions", cfg.Sessions.Create)

	authed := app.Group("", session.Middleware(cfg.Session))
	authed.Get("/users", cfg.Users.List)

	tickets := authed.Group("/tickets/:id")
	tickets.Get("", cfg.Tickets.Open)
	tickets.Delete("/conversation", cfg.Tickets.Release)
	tickets.Get("/timeline", cfg.Tickets.Timeline)
	tickets.Get("/journal", cfg.Tickets.Journal)
	tickets.Patch("/status", cfg.Tickets.SetStatus)
	tickets.Patch("/priority", cfg.Tickets.SetPriority)
	tickets.Patch("/assignee", cfg.Tickets.SetAssignee)
	tickets.Post("/reply", cfg.Tickets.Reply)
	tickets.Post("/merge", cfg.Tickets.Merge)
}
