package api

import (
	"context"
	"errors"

	notifdomain "github.com/jegu600/Gestion360/domain/notificacion"
	tareadomain "github.com/jegu600/Gestion360/domain/tarea"
	"github.com/jegu600/Gestion360/domain/usuario"
	"github.com/jegu600/Gestion360/modules/auth"
	"github.com/jegu600/Gestion360/modules/notificacion"
	"github.com/jegu600/Gestion360/modules/tarea"
)

var errNotImplemented = errors.New("not implemented")

// mockAuthPort implements auth.AuthPort for testing
type mockAuthPort struct {
	registerFunc      func(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error)
	loginFunc         func(ctx context.Context, correo, password string) (*auth.TokenResponse, error)
	validateTokenFunc func(ctx context.Context, token string) (*usuario.Claims, error)
	getUserFunc       func(ctx context.Context, userID string) (*auth.UserResponse, error)
	listUsersFunc     func(ctx context.Context) ([]auth.UserResponse, error)
}

func (m *mockAuthPort) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) Login(ctx context.Context, correo, password string) (*auth.TokenResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, correo, password)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) Refresh(context.Context, string) (*auth.TokenResponse, error) {
	return nil, errNotImplemented
}

func (m *mockAuthPort) Renew(context.Context, string) (*auth.TokenResponse, error) {
	return nil, errNotImplemented
}

func (m *mockAuthPort) ValidateToken(ctx context.Context, token string) (*usuario.Claims, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(ctx, token)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) GetUser(ctx context.Context, userID string) (*auth.UserResponse, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) UserExists(context.Context, string) (bool, error) {
	return false, errNotImplemented
}

func (m *mockAuthPort) ListUsers(ctx context.Context) ([]auth.UserResponse, error) {
	if m.listUsersFunc != nil {
		return m.listUsersFunc(ctx)
	}
	return nil, errNotImplemented
}

// mockTareaPort implements tarea.TareaPort for testing
type mockTareaPort struct {
	createFunc       func(ctx context.Context, actor usuario.Actor, fields tarea.Fields) (*tarea.TareaResponse, error)
	getFunc          func(ctx context.Context, actor usuario.Actor, id string) (*tareadomain.Tarea, error)
	listFunc         func(ctx context.Context, actor usuario.Actor) (*tarea.ListResponse, error)
	listByEstadoFunc func(ctx context.Context, actor usuario.Actor, estado string) (*tarea.ListResponse, error)
	updateFunc       func(ctx context.Context, actor usuario.Actor, id string, fields tarea.Fields) (*tarea.TareaResponse, error)
	changeEstadoFunc func(ctx context.Context, actor usuario.Actor, id, estado string) (*tarea.TareaResponse, error)
	deleteFunc       func(ctx context.Context, actor usuario.Actor, id string) error
}

func (m *mockTareaPort) Create(ctx context.Context, actor usuario.Actor, fields tarea.Fields) (*tarea.TareaResponse, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, actor, fields)
	}
	return nil, errNotImplemented
}

func (m *mockTareaPort) Get(ctx context.Context, actor usuario.Actor, id string) (*tareadomain.Tarea, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, actor, id)
	}
	return nil, errNotImplemented
}

func (m *mockTareaPort) List(ctx context.Context, actor usuario.Actor) (*tarea.ListResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, actor)
	}
	return nil, errNotImplemented
}

func (m *mockTareaPort) ListByEstado(ctx context.Context, actor usuario.Actor, estado string) (*tarea.ListResponse, error) {
	if m.listByEstadoFunc != nil {
		return m.listByEstadoFunc(ctx, actor, estado)
	}
	return nil, errNotImplemented
}

func (m *mockTareaPort) Update(ctx context.Context, actor usuario.Actor, id string, fields tarea.Fields) (*tarea.TareaResponse, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, actor, id, fields)
	}
	return nil, errNotImplemented
}

func (m *mockTareaPort) ChangeEstado(ctx context.Context, actor usuario.Actor, id, estado string) (*tarea.TareaResponse, error) {
	if m.changeEstadoFunc != nil {
		return m.changeEstadoFunc(ctx, actor, id, estado)
	}
	return nil, errNotImplemented
}

func (m *mockTareaPort) Delete(ctx context.Context, actor usuario.Actor, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, actor, id)
	}
	return errNotImplemented
}

// mockNotificacionPort implements notificacion.NotificacionPort for testing
type mockNotificacionPort struct {
	listFunc     func(ctx context.Context, usuarioID string, leida *bool, limit int) (*notificacion.ListResponse, error)
	countFunc    func(ctx context.Context, usuarioID string) (int64, error)
	markReadFunc func(ctx context.Context, usuarioID, id string) (*notifdomain.Notificacion, error)
	purgeFunc    func(ctx context.Context, usuarioID string) (int64, error)
}

func (m *mockNotificacionPort) Create(context.Context, notifdomain.Request) (*notifdomain.Notificacion, error) {
	return nil, errNotImplemented
}

func (m *mockNotificacionPort) List(ctx context.Context, usuarioID string, leida *bool, limit int) (*notificacion.ListResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, usuarioID, leida, limit)
	}
	return nil, errNotImplemented
}

func (m *mockNotificacionPort) Unread(context.Context, string) (*notificacion.UnreadResponse, error) {
	return nil, errNotImplemented
}

func (m *mockNotificacionPort) CountUnread(ctx context.Context, usuarioID string) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, usuarioID)
	}
	return 0, errNotImplemented
}

func (m *mockNotificacionPort) MarkRead(ctx context.Context, usuarioID, id string) (*notifdomain.Notificacion, error) {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, usuarioID, id)
	}
	return nil, errNotImplemented
}

func (m *mockNotificacionPort) MarkAllRead(context.Context, string) (int64, error) {
	return 0, errNotImplemented
}

func (m *mockNotificacionPort) Delete(context.Context, string, string) error {
	return errNotImplemented
}

func (m *mockNotificacionPort) PurgeRead(ctx context.Context, usuarioID string) (int64, error) {
	if m.purgeFunc != nil {
		return m.purgeFunc(ctx, usuarioID)
	}
	return 0, errNotImplemented
}

func (m *mockNotificacionPort) DeleteByTarea(context.Context, string) (int64, error) {
	return 0, errNotImplemented
}

// tokenAuth accepts "alice-token" and "admin-token".
func tokenAuth() *mockAuthPort {
	return &mockAuthPort{
		validateTokenFunc: func(_ context.Context, token string) (*usuario.Claims, error) {
			switch token {
			case "alice-token":
				return &usuario.Claims{UserID: "alice", Nombre: "Alice", Rol: usuario.RolUsuario}, nil
			case "admin-token":
				return &usuario.Claims{UserID: "root", Nombre: "Root", Rol: usuario.RolAdmin}, nil
			}
			return nil, auth.ErrInvalidToken
		},
	}
}
