package api

import (
	domain "github.com/jegu600/Gestion360/domain/tarea"
	"github.com/jegu600/Gestion360/modules/tarea"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Nombre   string `json:"nombre" validate:"required,max=100"`
	Correo   string `json:"correo" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Rol      string `json:"rol,omitempty" validate:"omitempty,oneof=admin usuario"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Correo   string `json:"correo" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TareaRequest is the body of task create and update calls. Absent fields
// are left untouched on update.
type TareaRequest struct {
	Titulo      *string `json:"titulo" validate:"omitempty,max=200"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=5000"`
	FechaLimite *string `json:"fechaLimite"`
	Responsable *string `json:"responsable" validate:"omitempty,max=36"`
	Prioridad   *string `json:"prioridad"`
	Estado      *string `json:"estado"`
}

func (r TareaRequest) fields() tarea.Fields {
	return tarea.Fields{
		Titulo:      r.Titulo,
		Descripcion: r.Descripcion,
		FechaLimite: r.FechaLimite,
		Responsable: r.Responsable,
		Prioridad:   r.Prioridad,
		Estado:      r.Estado,
	}
}

// EstadoRequest is the body of a status change.
type EstadoRequest struct {
	Estado string `json:"estado" validate:"required"`
}

// TareaEnvelope wraps a single task.
type TareaEnvelope struct {
	Tarea domain.Tarea `json:"tarea"`
}

// TareasResponse lists tasks.
type TareasResponse struct {
	Tareas []domain.Tarea `json:"tareas"`
	Total  int            `json:"total"`
}

// MessageResponse confirms an operation without a body.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}
