package notificacion

import (
	domain "github.com/jegu600/Gestion360/domain/notificacion"
)

// CreateRequest asks the inbox to store a derived notification.
type CreateRequest = domain.Request

// ListRequest lists a user's notifications.
type ListRequest struct {
	UsuarioID string `json:"usuario_id"`
	Leida     *bool  `json:"leida,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// ListResponse is a page of notifications plus the unread count.
type ListResponse struct {
	Notificaciones []domain.Notificacion `json:"notificaciones"`
	NoLeidas       int64                 `json:"noLeidas"`
	Total          int                   `json:"total"`
}

// UserRequest identifies the user whose inbox is addressed.
type UserRequest struct {
	UsuarioID string `json:"usuario_id"`
}

// UnreadResponse is the unread preview.
type UnreadResponse struct {
	Notificaciones []domain.Notificacion `json:"notificaciones"`
	Total          int                   `json:"total"`
}

// CountResponse carries the unread count.
type CountResponse struct {
	NoLeidas int64 `json:"noLeidas"`
}

// ItemRequest addresses one notification on behalf of a user.
type ItemRequest struct {
	UsuarioID string `json:"usuario_id"`
	ID        string `json:"id"`
}

// MarkAllResponse reports how many notifications were marked.
type MarkAllResponse struct {
	Actualizadas int64 `json:"actualizadas"`
}

// DeleteResponse represents a delete response.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// PurgeResponse reports how many notifications were removed.
type PurgeResponse struct {
	Eliminadas int64 `json:"eliminadas"`
}

// DeleteByTareaRequest removes the notifications about a task.
type DeleteByTareaRequest struct {
	TareaID string `json:"tarea_id"`
}
