package auth

import (
	"context"
	"testing"

	domain "github.com/jegu600/Gestion360/domain/usuario"
	"github.com/jegu600/Gestion360/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T, allowAdminSignup bool) *AuthService {
	t.Helper()

	db, err := database.OpenMemory(&domain.User{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	return NewAuthService(NewUserRepository(db), NewPasswordHasherWithCost(4), NewJWTManager(testJWTConfig()), allowAdminSignup)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		nombre   string
		correo   string
		password string
		wantErr  error
	}{
		{"valid", "Ana", "ana@example.com", "password123", nil},
		{"missing nombre", "  ", "ana@example.com", "password123", ErrNombreRequired},
		{"invalid email", "Ana", "not-an-email", "password123", ErrInvalidEmail},
		{"short password", "Ana", "ana@example.com", "short", ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupTestService(t, false)
			user, err := svc.Register(ctx, tt.nombre, tt.correo, tt.password, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.RolUsuario, user.Rol)
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestAuthService_RegisterDuplicateCorreo(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, false)

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Otra Ana", " ANA@example.com ", "password123", "")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAuthService_RegisterRolPolicy(t *testing.T) {
	ctx := context.Background()

	closed := setupTestService(t, false)
	user, err := closed.Register(ctx, "Ana", "ana@example.com", "password123", domain.RolAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RolUsuario, user.Rol)

	open := setupTestService(t, true)
	user, err = open.Register(ctx, "Ana", "ana@example.com", "password123", domain.RolAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RolAdmin, user.Rol)

	_, err = open.Register(ctx, "Bob", "bob@example.com", "password123", "superuser")
	assert.ErrorIs(t, err, ErrInvalidRol)
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, false)

	user, err := svc.Register(ctx, "Ana", "ana@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	tokens, err := svc.Login(ctx, "Ana@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)

	claims, err := svc.ValidateToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "Ana", claims.Nombre)
	assert.Equal(t, domain.RolUsuario, claims.Rol)

	_, err = svc.ValidateToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RefreshAndRenew(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, false)

	user, err := svc.Register(ctx, "Ana", "ana@example.com", "password123", "")
	require.NoError(t, err)
	tokens, err := svc.Login(ctx, "ana@example.com", "password123")
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshTokens(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	renewed, err := svc.Renew(ctx, user.ID)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = svc.Renew(ctx, "missing")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_SeedAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, false)

	require.NoError(t, svc.SeedAdmin(ctx, "", "admin@example.com", "admin-password"))
	require.NoError(t, svc.SeedAdmin(ctx, "", "admin@example.com", "admin-password"))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RolAdmin, users[0].Rol)
	assert.Equal(t, "Administrador", users[0].Nombre)
}

func TestAuthService_ListUsersSortedByNombre(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, false)

	for _, n := range []string{"Carla", "Ana", "Bruno"} {
		_, err := svc.Register(ctx, n, n+"@example.com", "password123", "")
		require.NoError(t, err)
	}

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Ana", users[0].Nombre)
	assert.Equal(t, "Bruno", users[1].Nombre)
	assert.Equal(t, "Carla", users[2].Nombre)

	_, err = svc.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
