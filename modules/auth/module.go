package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/jegu600/Gestion360/config"
	domain "github.com/jegu600/Gestion360/domain/usuario"
	"github.com/jegu600/Gestion360/internal/database"
	"gorm.io/gorm"
)

// AuthModule provides identity services: accounts, tokens and the user
// directory.
type AuthModule struct {
	cfg     config.AuthConfig
	dbPath  string
	debug   bool
	db      *gorm.DB
	service *AuthService
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(cfg *config.Config) *AuthModule {
	return &AuthModule{
		cfg:    cfg.Auth,
		dbPath: cfg.Database.AuthPath,
		debug:  cfg.Database.Debug,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the user store and seeds the admin account when configured.
func (m *AuthModule) Start(ctx context.Context) error {
	if err := checkSecret(m.cfg); err != nil {
		return err
	}

	db, err := database.Open(m.dbPath, m.debug, &domain.User{})
	if err != nil {
		return err
	}
	m.db = db

	jwtManager := NewJWTManager(JWTConfig{
		SecretKey:            m.cfg.SecretKey,
		AccessTokenDuration:  m.cfg.AccessTokenDuration,
		RefreshTokenDuration: m.cfg.RefreshTokenDuration,
		Issuer:               m.cfg.Issuer,
	})
	m.service = NewAuthService(NewUserRepository(db), NewPasswordHasher(), jwtManager, m.cfg.AllowAdminSignup)

	if m.cfg.AdminEmail != "" && m.cfg.AdminPassword != "" {
		if err := m.service.SeedAdmin(ctx, m.cfg.AdminNombre, m.cfg.AdminEmail, m.cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin account: %w", err)
		}
	}

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// checkSecret rejects an empty signing key and warns about the default one.
func checkSecret(cfg config.AuthConfig) error {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return errors.New("auth.secret_key (JWT_SECRET_KEY) must not be empty")
	}
	if cfg.InsecureSecret() {
		log.Println("[auth] WARNING: tokens are signed with the default public secret key; set JWT_SECRET_KEY before exposing this server")
	}
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if err := database.Close(m.db); err != nil {
		log.Printf("[auth] Warning: %v", err)
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(ctx context.Context) mono.HealthStatus {
	return database.Health(ctx, m.db, m.dbPath, nil)
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "refresh-token", json.Unmarshal, json.Marshal, m.handleRefresh,
	); err != nil {
		return fmt.Errorf("failed to register refresh-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "renew", json.Unmarshal, json.Marshal, m.handleRenew,
	); err != nil {
		return fmt.Errorf("failed to register renew service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-users", json.Unmarshal, json.Marshal, m.handleListUsers,
	); err != nil {
		return fmt.Errorf("failed to register list-users service: %w", err)
	}

	log.Printf("[auth] Registered services: register, login, refresh-token, renew, validate-token, get-user, list-users")
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Nombre, req.Correo, req.Password, domain.Rol(req.Rol))
	if err != nil {
		return RegisterResponse{}, err
	}

	return RegisterResponse{
		UID:    user.ID,
		Nombre: user.Nombre,
		Rol:    user.Rol,
	}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (TokenResponse, error) {
	tokens, err := m.service.Login(ctx, req.Correo, req.Password)
	if err != nil {
		return TokenResponse{}, err
	}
	return toTokenResponse(tokens), nil
}

func (m *AuthModule) handleRefresh(ctx context.Context, req RefreshRequest, _ *mono.Msg) (TokenResponse, error) {
	tokens, err := m.service.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		return TokenResponse{}, err
	}
	return toTokenResponse(tokens), nil
}

func (m *AuthModule) handleRenew(ctx context.Context, req RenewRequest, _ *mono.Msg) (TokenResponse, error) {
	tokens, err := m.service.Renew(ctx, req.UserID)
	if err != nil {
		return TokenResponse{}, err
	}
	return toTokenResponse(tokens), nil
}

// handleValidateToken reports validation failures in the response body
// rather than as a service error.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := ErrInvalidToken.Error()
		if errors.Is(err, ErrExpiredToken) {
			errMsg = ErrExpiredToken.Error()
		}
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:  true,
		UID:    claims.UserID,
		Nombre: claims.Nombre,
		Rol:    claims.Rol,
	}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (m *AuthModule) handleListUsers(ctx context.Context, _ ListUsersRequest, _ *mono.Msg) (ListUsersResponse, error) {
	users, err := m.service.ListUsers(ctx)
	if err != nil {
		return ListUsersResponse{}, err
	}

	resp := ListUsersResponse{
		Usuarios: make([]UserResponse, 0, len(users)),
		Total:    len(users),
	}
	for _, u := range users {
		resp.Usuarios = append(resp.Usuarios, toUserResponse(u))
	}
	return resp, nil
}
