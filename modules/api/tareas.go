package api

import (
	"github.com/gofiber/fiber/v2"
	domain "github.com/jegu600/Gestion360/domain/tarea"
)

// ListTareas handles GET /api/tareas.
func (h *Handlers) ListTareas(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	resp, err := h.tareas.List(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTareasResponse(resp.Tareas))
}

// ListTareasByEstado handles GET /api/tareas/estado/:estado.
func (h *Handlers) ListTareasByEstado(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	resp, err := h.tareas.ListByEstado(c.UserContext(), actor, c.Params("estado"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTareasResponse(resp.Tareas))
}

// GetTarea handles GET /api/tareas/:id.
func (h *Handlers) GetTarea(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	t, err := h.tareas.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(TareaEnvelope{Tarea: *t})
}

// CreateTarea handles POST /api/tareas.
func (h *Handlers) CreateTarea(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req TareaRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	resp, err := h.tareas.Create(c.UserContext(), actor, req.fields())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(TareaEnvelope{Tarea: resp.Tarea})
}

// UpdateTarea handles PUT /api/tareas/:id.
func (h *Handlers) UpdateTarea(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req TareaRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	resp, err := h.tareas.Update(c.UserContext(), actor, c.Params("id"), req.fields())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(TareaEnvelope{Tarea: resp.Tarea})
}

// ChangeEstado handles PATCH /api/tareas/:id/estado.
func (h *Handlers) ChangeEstado(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req EstadoRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	resp, err := h.tareas.ChangeEstado(c.UserContext(), actor, c.Params("id"), req.Estado)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(TareaEnvelope{Tarea: resp.Tarea})
}

// DeleteTarea handles DELETE /api/tareas/:id.
func (h *Handlers) DeleteTarea(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	if err := h.tareas.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(MessageResponse{Msg: "tarea deleted"})
}

func toTareasResponse(tareas []domain.Tarea) TareasResponse {
	if tareas == nil {
		tareas = []domain.Tarea{}
	}
	return TareasResponse{Tareas: tareas, Total: len(tareas)}
}
