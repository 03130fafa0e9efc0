package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ListNotificaciones handles GET /api/notificaciones?leida=&limit=.
func (h *Handlers) ListNotificaciones(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var leida *bool
	if raw := c.Query("leida"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "validation failed", FieldError{Field: "leida", Message: "must be true or false"})
		}
		leida = &v
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return badRequest(c, "validation failed", FieldError{Field: "limit", Message: "must be a positive integer"})
		}
	}

	resp, err := h.notificaciones.List(c.UserContext(), actor.ID, leida, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// UnreadNotificaciones handles GET /api/notificaciones/no-leidas.
func (h *Handlers) UnreadNotificaciones(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	resp, err := h.notificaciones.Unread(c.UserContext(), actor.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// CountNotificaciones handles GET /api/notificaciones/contador.
func (h *Handlers) CountNotificaciones(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	count, err := h.notificaciones.CountUnread(c.UserContext(), actor.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"noLeidas": count})
}

// MarkRead handles PATCH /api/notificaciones/:id/leida.
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	n, err := h.notificaciones.MarkRead(c.UserContext(), actor.ID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"notificacion": n})
}

// MarkAllRead handles PATCH /api/notificaciones/marcar-todas-leidas.
func (h *Handlers) MarkAllRead(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	updated, err := h.notificaciones.MarkAllRead(c.UserContext(), actor.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"actualizadas": updated})
}

// DeleteNotificacion handles DELETE /api/notificaciones/:id.
func (h *Handlers) DeleteNotificacion(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	if err := h.notificaciones.Delete(c.UserContext(), actor.ID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(MessageResponse{Msg: "notificacion deleted"})
}

// PurgeRead handles DELETE /api/notificaciones/limpiar-leidas.
func (h *Handlers) PurgeRead(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	deleted, err := h.notificaciones.PurgeRead(c.UserContext(), actor.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"eliminadas": deleted})
}
