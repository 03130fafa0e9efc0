package tarea

import (
	"errors"
	"strings"
)

var (
	// ErrTareaNotFound is returned when a task does not exist.
	ErrTareaNotFound = errors.New("tarea not found")
	// ErrUsuarioNotFound is returned when a responsable does not name a user.
	ErrUsuarioNotFound = errors.New("responsable usuario not found")
	// ErrForbidden is returned when the actor may not act on the task.
	ErrForbidden = errors.New("not allowed to access this tarea")
	// ErrValidation is returned for malformed input. Use errors.As with
	// *ValidationError for the per-field detail.
	ErrValidation = errors.New("validation failed")
	// ErrCascadeFailed is returned when a task was removed but its
	// notifications could not be.
	ErrCascadeFailed = errors.New("tarea deleted but notificaciones cascade failed")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects the invalid fields of a request.
type ValidationError struct {
	Fields []FieldError
}

// Error renders "validation failed: field: message; field: message".
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// parseValidationError rebuilds a ValidationError from its rendered text.
func parseValidationError(msg string) *ValidationError {
	verr := &ValidationError{}
	marker := ErrValidation.Error() + ": "
	i := strings.Index(msg, marker)
	if i < 0 {
		return verr
	}
	for _, part := range strings.Split(msg[i+len(marker):], "; ") {
		field, message, ok := strings.Cut(part, ": ")
		if !ok {
			verr.add("", strings.TrimSpace(part))
			continue
		}
		verr.add(strings.TrimSpace(field), strings.TrimSpace(message))
	}
	return verr
}
