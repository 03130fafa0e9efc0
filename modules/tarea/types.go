package tarea

import (
	notif "github.com/jegu600/Gestion360/domain/notificacion"
	domain "github.com/jegu600/Gestion360/domain/tarea"
	"github.com/jegu600/Gestion360/domain/usuario"
)

// CreateRequest creates a task on behalf of Actor.
type CreateRequest struct {
	Actor  usuario.Actor `json:"actor"`
	Fields Fields        `json:"fields"`
}

// GetRequest fetches one task.
type GetRequest struct {
	Actor usuario.Actor `json:"actor"`
	ID    string        `json:"id"`
}

// ListRequest lists the tasks visible to Actor, optionally by state.
type ListRequest struct {
	Actor  usuario.Actor `json:"actor"`
	Estado string        `json:"estado,omitempty"`
}

// UpdateRequest merges Fields into a task.
type UpdateRequest struct {
	Actor  usuario.Actor `json:"actor"`
	ID     string        `json:"id"`
	Fields Fields        `json:"fields"`
}

// ChangeEstadoRequest moves a task to Estado.
type ChangeEstadoRequest struct {
	Actor  usuario.Actor `json:"actor"`
	ID     string        `json:"id"`
	Estado string        `json:"estado"`
}

// DeleteRequest removes a task.
type DeleteRequest struct {
	Actor usuario.Actor `json:"actor"`
	ID    string        `json:"id"`
}

// TareaResponse is a stored task plus the notifications derived from the
// mutation that produced it.
type TareaResponse struct {
	Tarea  domain.Tarea    `json:"tarea"`
	Avisos []notif.Request `json:"avisos,omitempty"`
}

// ListResponse represents a task listing.
type ListResponse struct {
	Tareas []domain.Tarea `json:"tareas"`
	Total  int            `json:"total"`
}

// DeleteResponse represents a delete response.
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}
