package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	domain "github.com/jegu600/Gestion360/domain/usuario"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, correo, password string) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Renew(ctx context.Context, userID string) (*TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*UserResponse, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{container: container}
}

// call invokes a request-reply service and maps its error back to a sentinel.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return mapServiceError(service, err)
	}
	return nil
}

// Register creates a user account.
func (a *AuthAdapter) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := call(ctx, a.container, "register", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a token pair.
func (a *AuthAdapter) Login(ctx context.Context, correo, password string) (*TokenResponse, error) {
	req := LoginRequest{Correo: correo, Password: password}
	var resp TokenResponse
	if err := call(ctx, a.container, "login", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new pair.
func (a *AuthAdapter) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	req := RefreshRequest{RefreshToken: refreshToken}
	var resp TokenResponse
	if err := call(ctx, a.container, "refresh-token", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Renew issues a new pair for an authenticated user.
func (a *AuthAdapter) Renew(ctx context.Context, userID string) (*TokenResponse, error) {
	req := RenewRequest{UserID: userID}
	var resp TokenResponse
	if err := call(ctx, a.container, "renew", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := call(ctx, a.container, "validate-token", &req, &resp); err != nil {
		return nil, err
	}

	if !resp.Valid {
		if resp.Error == ErrExpiredToken.Error() {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return &domain.Claims{
		UserID: resp.UID,
		Nombre: resp.Nombre,
		Rol:    resp.Rol,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*UserResponse, error) {
	req := GetUserRequest{UserID: userID}
	var resp UserResponse
	if err := call(ctx, a.container, "get-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserExists reports whether userID names a stored user.
func (a *AuthAdapter) UserExists(ctx context.Context, userID string) (bool, error) {
	if _, err := a.GetUser(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListUsers returns all users sorted by name.
func (a *AuthAdapter) ListUsers(ctx context.Context) ([]UserResponse, error) {
	var resp ListUsersResponse
	if err := call(ctx, a.container, "list-users", &ListUsersRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Usuarios, nil
}

// mapServiceError maps service errors back to auth sentinels.
// Errors lose their type information when sent over NATS, so the message
// text is matched instead.
func mapServiceError(service string, err error) error {
	if err == nil {
		return nil
	}

	errMsg := strings.ToLower(err.Error())
	for _, sentinel := range []error{
		ErrInvalidCredentials,
		ErrUserExists,
		ErrUserNotFound,
		ErrInvalidEmail,
		ErrNombreRequired,
		ErrWeakPassword,
		ErrPasswordTooLong,
		ErrInvalidRol,
		ErrExpiredToken,
		ErrInvalidToken,
	} {
		if strings.Contains(errMsg, sentinel.Error()) {
			return sentinel
		}
	}

	return fmt.Errorf("%s request failed: %w", service, err)
}
