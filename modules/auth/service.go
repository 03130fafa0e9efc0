package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/jegu600/Gestion360/domain/usuario"
)

// AuthService handles authentication business logic.
type AuthService struct {
	repo             *UserRepository
	hasher           *PasswordHasher
	jwt              *JWTManager
	allowAdminSignup bool
}

// NewAuthService creates a new AuthService. allowAdminSignup lets public
// registration request the admin role.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager, allowAdminSignup bool) *AuthService {
	return &AuthService{
		repo:             repo,
		hasher:           hasher,
		jwt:              jwt,
		allowAdminSignup: allowAdminSignup,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, nombre, correo, password string, rol domain.Rol) (*domain.User, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return nil, ErrNombreRequired
	}

	correo = normalizeCorreo(correo)
	if _, err := mail.ParseAddress(correo); err != nil {
		return nil, ErrInvalidEmail
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	resolved, err := s.resolveRol(rol)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.CorreoExists(ctx, correo)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	return s.create(ctx, nombre, correo, password, resolved)
}

// resolveRol applies the signup policy: without allowAdminSignup every
// account is a plain user.
func (s *AuthService) resolveRol(rol domain.Rol) (domain.Rol, error) {
	if rol == "" {
		return domain.RolUsuario, nil
	}
	if !rol.Valid() {
		return "", ErrInvalidRol
	}
	if rol == domain.RolAdmin && !s.allowAdminSignup {
		return domain.RolUsuario, nil
	}
	return rol, nil
}

func (s *AuthService) create(ctx context.Context, nombre, correo, password string, rol domain.Rol) (*domain.User, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Nombre:       nombre,
		Correo:       correo,
		PasswordHash: passwordHash,
		Rol:          rol,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SeedAdmin creates an admin account unless the email is already taken.
func (s *AuthService) SeedAdmin(ctx context.Context, nombre, correo, password string) error {
	correo = normalizeCorreo(correo)
	exists, err := s.repo.CorreoExists(ctx, correo)
	if err != nil {
		return fmt.Errorf("failed to check admin existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if strings.TrimSpace(nombre) == "" {
		nombre = "Administrador"
	}

	user, err := s.create(ctx, nombre, correo, password, domain.RolAdmin)
	if err != nil {
		return err
	}
	log.Printf("[auth] Seeded admin account %s (%s)", user.Correo, user.ID)
	return nil
}

// Login authenticates a user and returns tokens.
func (s *AuthService) Login(ctx context.Context, correo, password string) (*domain.TokenPair, error) {
	user, err := s.repo.FindByCorreo(ctx, normalizeCorreo(correo))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(user)
}

// RefreshTokens exchanges a refresh token for a new pair.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return s.Renew(ctx, claims.UserID)
}

// Renew issues a fresh pair for an already authenticated user, picking up
// any change to the stored name or role.
func (s *AuthService) Renew(ctx context.Context, userID string) (*domain.TokenPair, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.generateTokenPair(user)
}

// ValidateToken validates an access token and returns claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	return &domain.Claims{
		UserID: claims.UserID,
		Nombre: claims.Nombre,
		Rol:    claims.Rol,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// ListUsers returns all users sorted by name.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *AuthService) generateTokenPair(user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwt.AccessTokenDuration(),
		TokenType:    "Bearer",
	}, nil
}

// validatePassword enforces bcrypt's 72-byte limit as the upper bound.
func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

func normalizeCorreo(correo string) string {
	return strings.ToLower(strings.TrimSpace(correo))
}
