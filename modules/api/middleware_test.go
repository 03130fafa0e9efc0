package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"Authorization header is required"`,
		},
		{
			name:           "invalid authorization format - no bearer",
			headers:        map[string]string{"Authorization": "Basic token123"},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `Invalid authorization header format`,
		},
		{
			name:           "invalid token",
			headers:        map[string]string{"Authorization": "Bearer nope"},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"Invalid or expired token"`,
		},
		{
			name:           "valid bearer token",
			headers:        map[string]string{"Authorization": "Bearer alice-token"},
			expectedStatus: http.StatusOK,
			expectedBody:   `"alice"`,
		},
		{
			name:           "valid x-token header",
			headers:        map[string]string{"x-token": "admin-token"},
			expectedStatus: http.StatusOK,
			expectedBody:   `"root"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(AuthMiddleware(tokenAuth()))
			app.Get("/test", func(c *fiber.Ctx) error {
				actor, err := actorFrom(c)
				if err != nil {
					return err
				}
				return c.JSON(fiber.Map{"uid": actor.ID})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("failed to execute request: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}

			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, string(body))
			}
		})
	}
}

func TestQueryTokenMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(QueryTokenMiddleware(tokenAuth()))
	app.Get("/ws", func(c *fiber.Ctx) error {
		claims, _ := claimsFrom(c)
		return c.SendString(claims.UserID)
	})

	tests := []struct {
		target string
		want   int
	}{
		{"/ws", http.StatusUnauthorized},
		{"/ws?token=nope", http.StatusUnauthorized},
		{"/ws?token=alice-token", http.StatusOK},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.target, nil), -1)
		if err != nil {
			t.Fatalf("failed to execute request: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.target, resp.StatusCode, tt.want)
		}
	}
}
