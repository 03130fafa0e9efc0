package tarea

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidEstado is returned when a status is not one of the known values.
	ErrInvalidEstado = errors.New("invalid estado")
	// ErrInvalidPrioridad is returned when a priority is not one of the known values.
	ErrInvalidPrioridad = errors.New("invalid prioridad")
)

// Estado represents the state of a task.
type Estado string

const (
	EstadoPendiente  Estado = "Pendiente"
	EstadoEnProgreso Estado = "En_progreso"
	EstadoCompletada Estado = "Completada"
	EstadoCancelada  Estado = "Cancelada"
)

// Estados lists every state in display order.
var Estados = []Estado{EstadoPendiente, EstadoEnProgreso, EstadoCompletada, EstadoCancelada}

// Valid reports whether e is a known state.
func (e Estado) Valid() bool {
	switch e {
	case EstadoPendiente, EstadoEnProgreso, EstadoCompletada, EstadoCancelada:
		return true
	}
	return false
}

// Label returns the state formatted for messages ("En_progreso" -> "En progreso").
func (e Estado) Label() string {
	return strings.ReplaceAll(string(e), "_", " ")
}

// ParseEstado validates s against the known states.
func ParseEstado(s string) (Estado, error) {
	e := Estado(s)
	if !e.Valid() {
		return "", ErrInvalidEstado
	}
	return e, nil
}

// Prioridad represents the priority of a task.
type Prioridad string

const (
	PrioridadBaja    Prioridad = "Baja"
	PrioridadMedia   Prioridad = "Media"
	PrioridadAlta    Prioridad = "Alta"
	PrioridadUrgente Prioridad = "Urgente"
)

// Valid reports whether p is a known priority.
func (p Prioridad) Valid() bool {
	switch p {
	case PrioridadBaja, PrioridadMedia, PrioridadAlta, PrioridadUrgente:
		return true
	}
	return false
}

// IsHigh reports whether p is Alta or Urgente.
func (p Prioridad) IsHigh() bool {
	return p == PrioridadAlta || p == PrioridadUrgente
}

// ParsePrioridad validates s against the known priorities.
func ParsePrioridad(s string) (Prioridad, error) {
	p := Prioridad(s)
	if !p.Valid() {
		return "", ErrInvalidPrioridad
	}
	return p, nil
}

// Tarea is the core domain entity representing a task.
type Tarea struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Titulo        string    `gorm:"size:200;not null" json:"titulo"`
	Descripcion   string    `gorm:"not null" json:"descripcion"`
	Estado        Estado    `gorm:"size:20;not null;default:Pendiente;index" json:"estado"`
	FechaCreacion time.Time `gorm:"not null;index" json:"fechaCreacion"`
	FechaLimite   time.Time `gorm:"not null" json:"fechaLimite"`
	Responsable   string    `gorm:"size:36;not null;index" json:"responsable"`
	CreadoPor     string    `gorm:"size:36;index" json:"creadoPor"`
	Prioridad     Prioridad `gorm:"size:10;not null;default:Media" json:"prioridad"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName returns the table name for the Tarea entity.
func (Tarea) TableName() string {
	return "tareas"
}

// IsParticipant reports whether userID created or is assigned to the task.
func (t *Tarea) IsParticipant(userID string) bool {
	return t.CreadoPor == userID || t.Responsable == userID
}
