package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// NotificacionCreadaEvent is emitted after a notification is stored.
type NotificacionCreadaEvent struct {
	NotificacionID string    `json:"notificacion_id"`
	UsuarioID      string    `json:"usuario_id"`
	TareaID        string    `json:"tarea_id,omitempty"`
	Mensaje        string    `json:"mensaje"`
	Tipo           string    `json:"tipo"`
	Prioridad      string    `json:"prioridad"`
	Fecha          time.Time `json:"fecha"`
}

// NotificacionCreadaV1 is the typed event definition for new notifications.
// Subject: events.notificacion.v1.notificacion-creada
var NotificacionCreadaV1 = helper.EventDefinition[NotificacionCreadaEvent](
	"notificacion", "NotificacionCreada", "v1",
)
