package auth

import (
	"time"

	domain "github.com/jegu600/Gestion360/domain/usuario"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Nombre   string `json:"nombre"`
	Correo   string `json:"correo"`
	Password string `json:"password"`
	Rol      string `json:"rol,omitempty"`
}

// RegisterResponse represents a user registration response.
type RegisterResponse struct {
	UID    string     `json:"uid"`
	Nombre string     `json:"nombre"`
	Rol    domain.Rol `json:"rol"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Correo   string `json:"correo"`
	Password string `json:"password"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RenewRequest asks for a new pair for an authenticated user.
type RenewRequest struct {
	UserID string `json:"user_id"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid  bool       `json:"valid"`
	UID    string     `json:"uid,omitempty"`
	Nombre string     `json:"nombre,omitempty"`
	Rol    domain.Rol `json:"rol,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// UserResponse is the public view of a user. The password hash is never
// part of it.
type UserResponse struct {
	ID        string     `json:"id"`
	Nombre    string     `json:"nombre"`
	Correo    string     `json:"correo"`
	Rol       domain.Rol `json:"rol"`
	CreatedAt time.Time  `json:"created_at"`
}

// ListUsersRequest represents a list users request.
type ListUsersRequest struct{}

// ListUsersResponse lists users sorted by name.
type ListUsersResponse struct {
	Usuarios []UserResponse `json:"usuarios"`
	Total    int            `json:"total"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Nombre:    u.Nombre,
		Correo:    u.Correo,
		Rol:       u.Rol,
		CreatedAt: u.CreatedAt,
	}
}

func toTokenResponse(p *domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    p.ExpiresIn,
		TokenType:    p.TokenType,
	}
}
