package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TareaCreadaEvent is emitted when a new task is created.
type TareaCreadaEvent struct {
	TareaID     string    `json:"tarea_id"`
	Titulo      string    `json:"titulo"`
	Estado      string    `json:"estado"`
	Prioridad   string    `json:"prioridad"`
	Responsable string    `json:"responsable"`
	CreadoPor   string    `json:"creado_por"`
	ActorID     string    `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TareaCreadaV1 is the typed event definition for task creation.
// Subject: events.tarea.v1.tarea-creada
var TareaCreadaV1 = helper.EventDefinition[TareaCreadaEvent](
	"tarea", "TareaCreada", "v1",
)

// TareaActualizadaEvent is emitted after a full update.
type TareaActualizadaEvent struct {
	TareaID             string    `json:"tarea_id"`
	Titulo              string    `json:"titulo"`
	Responsable         string    `json:"responsable"`
	ResponsableAnterior string    `json:"responsable_anterior,omitempty"`
	CreadoPor           string    `json:"creado_por"`
	ActorID             string    `json:"actor_id"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TareaActualizadaV1 is the typed event definition for task updates.
var TareaActualizadaV1 = helper.EventDefinition[TareaActualizadaEvent](
	"tarea", "TareaActualizada", "v1",
)

// TareaEstadoCambiadoEvent is emitted when the status of a task changes.
type TareaEstadoCambiadoEvent struct {
	TareaID        string    `json:"tarea_id"`
	Titulo         string    `json:"titulo"`
	EstadoAnterior string    `json:"estado_anterior"`
	Estado         string    `json:"estado"`
	Responsable    string    `json:"responsable"`
	CreadoPor      string    `json:"creado_por"`
	ActorID        string    `json:"actor_id"`
	ChangedAt      time.Time `json:"changed_at"`
}

// TareaEstadoCambiadoV1 is the typed event definition for status changes.
var TareaEstadoCambiadoV1 = helper.EventDefinition[TareaEstadoCambiadoEvent](
	"tarea", "TareaEstadoCambiado", "v1",
)

// TareaEliminadaEvent is emitted when a task is deleted.
type TareaEliminadaEvent struct {
	TareaID     string    `json:"tarea_id"`
	Responsable string    `json:"responsable"`
	CreadoPor   string    `json:"creado_por"`
	ActorID     string    `json:"actor_id"`
	DeletedAt   time.Time `json:"deleted_at"`
}

// TareaEliminadaV1 is the typed event definition for task deletion.
// Consumers use it to remove data that references the task.
var TareaEliminadaV1 = helper.EventDefinition[TareaEliminadaEvent](
	"tarea", "TareaEliminada", "v1",
)
