package tarea

import (
	domain "github.com/jegu600/Gestion360/domain/tarea"
	"github.com/jegu600/Gestion360/domain/usuario"
)

// Action is an operation checked by Authorize.
type Action int

const (
	ActionRead Action = iota
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "read"
	}
}

// Authorize reports whether actor may perform action on t. Admins may do
// anything; participants may read and update; only the creator may delete.
func Authorize(actor usuario.Actor, t *domain.Tarea, action Action) error {
	if actor.IsAdmin() {
		return nil
	}

	switch action {
	case ActionRead, ActionUpdate:
		if t.IsParticipant(actor.ID) {
			return nil
		}
	case ActionDelete:
		if t.CreadoPor == actor.ID {
			return nil
		}
	}
	return ErrForbidden
}
