package notificacion

import "errors"

var (
	// ErrNotificacionNotFound is returned when a notification does not exist.
	ErrNotificacionNotFound = errors.New("notificacion not found")
	// ErrForbidden is returned when a user acts on someone else's notification.
	ErrForbidden = errors.New("notificacion belongs to another user")
	// ErrValidation is returned for malformed notification requests.
	ErrValidation = errors.New("validation failed")
)
