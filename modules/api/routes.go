package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP and WebSocket routes.
func setupRoutes(app *fiber.App, h *Handlers, authLimiter fiber.Handler) {
	app.Get("/health", h.Health)

	// WebSocket endpoint, authenticated through ?token=
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}, QueryTokenMiddleware(h.auth))
	app.Get("/ws", websocket.New(h.HandleWebSocket))

	api := app.Group("/api")

	// Public auth routes
	authRoutes := api.Group("/auth")
	if authLimiter != nil {
		authRoutes.Post("/register", authLimiter, h.Register)
		authRoutes.Post("/login", authLimiter, h.Login)
	} else {
		authRoutes.Post("/register", h.Register)
		authRoutes.Post("/login", h.Login)
	}
	authRoutes.Post("/refresh", h.Refresh)

	// Protected routes
	requireAuth := AuthMiddleware(h.auth)
	authRoutes.Get("/renew", requireAuth, h.Renew)

	usuarios := api.Group("/usuarios", requireAuth)
	usuarios.Get("/", h.ListUsers)
	usuarios.Get("/:id", h.GetUser)

	tareas := api.Group("/tareas", requireAuth)
	tareas.Get("/", h.ListTareas)
	tareas.Get("/estado/:estado", h.ListTareasByEstado)
	tareas.Get("/:id", h.GetTarea)
	tareas.Post("/", h.CreateTarea)
	tareas.Put("/:id", h.UpdateTarea)
	tareas.Patch("/:id/estado", h.ChangeEstado)
	tareas.Delete("/:id", h.DeleteTarea)

	notificaciones := api.Group("/notificaciones", requireAuth)
	notificaciones.Get("/", h.ListNotificaciones)
	notificaciones.Get("/no-leidas", h.UnreadNotificaciones)
	notificaciones.Get("/contador", h.CountNotificaciones)
	notificaciones.Patch("/marcar-todas-leidas", h.MarkAllRead)
	notificaciones.Patch("/:id/leida", h.MarkRead)
	notificaciones.Delete("/limpiar-leidas", h.PurgeRead)
	notificaciones.Delete("/:id", h.DeleteNotificacion)
}
