package api

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jegu600/Gestion360/modules/auth"
	"github.com/jegu600/Gestion360/modules/notificacion"
	"github.com/jegu600/Gestion360/modules/tarea"
)

var (
	errTokenRequired     = errors.New("Authorization header is required")
	errInvalidAuthHeader = errors.New("Invalid authorization header format. Use: Bearer <token>")
)

// errorStatus maps a module error to its HTTP status and response code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, tarea.ErrValidation),
		errors.Is(err, notificacion.ErrValidation),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrNombreRequired),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrInvalidRol):
		return fiber.StatusBadRequest, "validation_error"
	case errors.Is(err, tarea.ErrTareaNotFound),
		errors.Is(err, tarea.ErrUsuarioNotFound),
		errors.Is(err, notificacion.ErrNotificacionNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, tarea.ErrForbidden),
		errors.Is(err, notificacion.ErrForbidden):
		return fiber.StatusForbidden, "forbidden"
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return fiber.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auth.ErrUserExists):
		return fiber.StatusConflict, "conflict"
	}
	return fiber.StatusInternalServerError, "internal_error"
}

// writeError writes the response for a module error. Unknown errors are
// logged and answered with a generic message.
func writeError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("[api] Internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(ErrorResponse{
			Error:   code,
			Message: "An internal error occurred",
		})
	}

	resp := ErrorResponse{Error: code, Message: err.Error()}
	var verr *tarea.ValidationError
	if errors.As(err, &verr) {
		resp.Message = tarea.ErrValidation.Error()
		resp.Fields = toFieldErrors(verr.Fields)
	}
	return c.Status(status).JSON(resp)
}

// badRequest writes a 400 for input the handler rejected itself.
func badRequest(c *fiber.Ctx, message string, fields ...FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "validation_error",
		Message: message,
		Fields:  fields,
	})
}

// customErrorHandler handles errors returned by handlers and middleware.
func customErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{
			Error:   strings.ToLower(strings.ReplaceAll(statusText(fe.Code), " ", "_")),
			Message: fe.Message,
		})
	}
	return writeError(c, err)
}

// rateLimitReached answers requests rejected by the limiter.
func rateLimitReached(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
		Error:   "too_many_requests",
		Message: "Rate limit exceeded. Please retry later.",
	})
}

func statusText(code int) string {
	if text := utils.StatusMessage(code); text != "" {
		return text
	}
	return "server error"
}

func toFieldErrors(fields []tarea.FieldError) []FieldError {
	out := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}
