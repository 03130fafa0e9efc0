package api

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jegu600/Gestion360/domain/usuario"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"

	// legacyTokenHeader is the header the web client sends the token in.
	legacyTokenHeader = "x-token"
)

// TokenValidator resolves an access token to its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*usuario.Claims, error)
}

// AuthMiddleware validates the access token from the Authorization header
// (Bearer scheme) or the x-token header.
func AuthMiddleware(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := extractToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: err.Error(),
			})
		}
		return authenticate(c, validator, token)
	}
}

// QueryTokenMiddleware validates the token passed as ?token= on the
// websocket handshake.
func QueryTokenMiddleware(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Token is required",
			})
		}
		return authenticate(c, validator, token)
	}
}

func authenticate(c *fiber.Ctx, validator TokenValidator, token string) error {
	claims, err := validator.ValidateToken(c.UserContext(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired token",
		})
	}

	c.Locals(UserContextKey, claims)
	return c.Next()
}

func extractToken(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", errInvalidAuthHeader
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return "", errTokenRequired
		}
		return token, nil
	}

	if token := c.Get(legacyTokenHeader); token != "" {
		return token, nil
	}
	return "", errTokenRequired
}

// claimsFrom returns the claims stored by the auth middleware.
func claimsFrom(c *fiber.Ctx) (*usuario.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*usuario.Claims)
	return claims, ok && claims != nil
}

// actorFrom returns the authenticated actor.
func actorFrom(c *fiber.Ctx) (usuario.Actor, error) {
	claims, ok := claimsFrom(c)
	if !ok {
		return usuario.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "User not authenticated")
	}
	return claims.Actor(), nil
}
