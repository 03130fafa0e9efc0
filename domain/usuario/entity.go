package usuario

import (
	"time"
)

// Rol is the authorization role of a user.
type Rol string

const (
	RolAdmin   Rol = "admin"
	RolUsuario Rol = "usuario"
)

// Valid reports whether r is a known role.
func (r Rol) Valid() bool {
	return r == RolAdmin || r == RolUsuario
}

// User represents a user entity in the system.
type User struct {
	ID           string `gorm:"primaryKey;type:text"`
	Nombre       string `gorm:"not null;type:text;index"`
	Correo       string `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string `gorm:"not null;type:text"`
	Rol          Rol    `gorm:"not null;type:text;default:usuario"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "usuarios"
}

// TokenPair represents access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Claims is the identity resolved from an access token.
type Claims struct {
	UserID string `json:"uid"`
	Nombre string `json:"nombre"`
	Rol    Rol    `json:"rol"`
}

// Actor returns the acting identity carried by the claims.
func (c Claims) Actor() Actor {
	return Actor{ID: c.UserID, Rol: c.Rol}
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID  string `json:"id"`
	Rol Rol    `json:"rol"`
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Rol == RolAdmin
}
