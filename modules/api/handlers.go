package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jegu600/Gestion360/modules/auth"
	"github.com/jegu600/Gestion360/modules/notificacion"
	"github.com/jegu600/Gestion360/modules/push"
	"github.com/jegu600/Gestion360/modules/tarea"
)

// Handlers contains the HTTP and WebSocket handlers.
type Handlers struct {
	auth           auth.AuthPort
	tareas         tarea.TareaPort
	notificaciones notificacion.NotificacionPort
	hub            *push.Hub
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authPort auth.AuthPort, tareas tarea.TareaPort, notificaciones notificacion.NotificacionPort, hub *push.Hub) *Handlers {
	return &Handlers{
		auth:           authPort,
		tareas:         tareas,
		notificaciones: notificaciones,
		hub:            hub,
	}
}

// Health handles GET /health.
func (h *Handlers) Health(c *fiber.Ctx) error {
	details := fiber.Map{"module": "api"}
	if h.hub != nil {
		details["connected_clients"] = h.hub.ClientCount()
	}
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"details": details,
	})
}

// Register handles POST /api/auth/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	resp, err := h.auth.Register(c.UserContext(), auth.RegisterRequest{
		Nombre:   req.Nombre,
		Correo:   req.Correo,
		Password: req.Password,
		Rol:      req.Rol,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /api/auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	tokens, err := h.auth.Login(c.UserContext(), req.Correo, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tokens)
}

// Refresh handles POST /api/auth/refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	tokens, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired refresh token",
		})
	}
	return c.JSON(tokens)
}

// Renew handles GET /api/auth/renew.
func (h *Handlers) Renew(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	tokens, err := h.auth.Renew(c.UserContext(), actor.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tokens)
}

// ListUsers handles GET /api/usuarios.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	if users == nil {
		users = []auth.UserResponse{}
	}
	return c.JSON(fiber.Map{
		"usuarios": users,
		"total":    len(users),
	})
}

// GetUser handles GET /api/usuarios/:id.
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	user, err := h.auth.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"usuario": user})
}
