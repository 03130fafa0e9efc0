package notificacion

import (
	"errors"
	"time"
)

var (
	// ErrInvalidTipo is returned when a notification type is unknown.
	ErrInvalidTipo = errors.New("invalid tipo")
	// ErrInvalidPrioridad is returned when a notification priority is unknown.
	ErrInvalidPrioridad = errors.New("invalid prioridad")
)

// Tipo classifies a notification.
type Tipo string

const (
	TipoTareaAsignada    Tipo = "tarea_asignada"
	TipoTareaActualizada Tipo = "tarea_actualizada"
	TipoTareaCompletada  Tipo = "tarea_completada"
	TipoTareaVencida     Tipo = "tarea_vencida"
	TipoRecordatorio     Tipo = "recordatorio"
	TipoSistema          Tipo = "sistema"
	TipoComentario       Tipo = "comentario"
)

// Valid reports whether t is a known type.
func (t Tipo) Valid() bool {
	switch t {
	case TipoTareaAsignada, TipoTareaActualizada, TipoTareaCompletada,
		TipoTareaVencida, TipoRecordatorio, TipoSistema, TipoComentario:
		return true
	}
	return false
}

// Prioridad is the urgency of a notification.
type Prioridad string

const (
	PrioridadBaja  Prioridad = "baja"
	PrioridadMedia Prioridad = "media"
	PrioridadAlta  Prioridad = "alta"
)

// Valid reports whether p is a known priority.
func (p Prioridad) Valid() bool {
	return p == PrioridadBaja || p == PrioridadMedia || p == PrioridadAlta
}

// Notificacion is a message delivered to a single user's inbox.
type Notificacion struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Mensaje   string    `gorm:"not null" json:"mensaje"`
	Fecha     time.Time `gorm:"not null;index:idx_usuario_fecha,priority:2" json:"fecha"`
	UsuarioID string    `gorm:"size:36;not null;index:idx_usuario_fecha,priority:1;index:idx_usuario_leida,priority:1" json:"usuario_id"`
	TareaID   string    `gorm:"size:36;index" json:"tarea_id,omitempty"`
	Leida     bool      `gorm:"not null;default:false;index:idx_usuario_leida,priority:2" json:"leida"`
	Tipo      Tipo      `gorm:"size:20;not null;default:sistema" json:"tipo"`
	Prioridad Prioridad `gorm:"size:10;not null;default:media" json:"prioridad"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the table name for the Notificacion entity.
func (Notificacion) TableName() string {
	return "notificaciones"
}

// Request is a notification to be delivered, before it is stored.
type Request struct {
	Mensaje   string    `json:"mensaje"`
	UsuarioID string    `json:"usuario_id"`
	TareaID   string    `json:"tarea_id,omitempty"`
	Tipo      Tipo      `json:"tipo"`
	Prioridad Prioridad `json:"prioridad"`
}
