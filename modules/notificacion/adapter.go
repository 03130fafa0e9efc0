package notificacion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	domain "github.com/jegu600/Gestion360/domain/notificacion"
)

// NotificacionPort is how other modules reach the inbox.
type NotificacionPort interface {
	Create(ctx context.Context, req domain.Request) (*domain.Notificacion, error)
	List(ctx context.Context, usuarioID string, leida *bool, limit int) (*ListResponse, error)
	Unread(ctx context.Context, usuarioID string) (*UnreadResponse, error)
	CountUnread(ctx context.Context, usuarioID string) (int64, error)
	MarkRead(ctx context.Context, usuarioID, id string) (*domain.Notificacion, error)
	MarkAllRead(ctx context.Context, usuarioID string) (int64, error)
	Delete(ctx context.Context, usuarioID, id string) error
	PurgeRead(ctx context.Context, usuarioID string) (int64, error)
	DeleteByTarea(ctx context.Context, tareaID string) (int64, error)
}

// notificacionAdapter wraps ServiceContainer for type-safe cross-module communication.
type notificacionAdapter struct {
	container mono.ServiceContainer
}

// NewNotificacionAdapter creates a new adapter for notification services.
func NewNotificacionAdapter(container mono.ServiceContainer) NotificacionPort {
	if container == nil {
		panic("notificacion adapter requires non-nil ServiceContainer")
	}
	return &notificacionAdapter{container: container}
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

func (a *notificacionAdapter) Create(ctx context.Context, req domain.Request) (*domain.Notificacion, error) {
	var resp domain.Notificacion
	if err := call(ctx, a.container, "create", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *notificacionAdapter) List(ctx context.Context, usuarioID string, leida *bool, limit int) (*ListResponse, error) {
	req := ListRequest{UsuarioID: usuarioID, Leida: leida, Limit: limit}
	var resp ListResponse
	if err := call(ctx, a.container, "list", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *notificacionAdapter) Unread(ctx context.Context, usuarioID string) (*UnreadResponse, error) {
	req := UserRequest{UsuarioID: usuarioID}
	var resp UnreadResponse
	if err := call(ctx, a.container, "list-no-leidas", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *notificacionAdapter) CountUnread(ctx context.Context, usuarioID string) (int64, error) {
	req := UserRequest{UsuarioID: usuarioID}
	var resp CountResponse
	if err := call(ctx, a.container, "count-no-leidas", &req, &resp); err != nil {
		return 0, err
	}
	return resp.NoLeidas, nil
}

func (a *notificacionAdapter) MarkRead(ctx context.Context, usuarioID, id string) (*domain.Notificacion, error) {
	req := ItemRequest{UsuarioID: usuarioID, ID: id}
	var resp domain.Notificacion
	if err := call(ctx, a.container, "mark-leida", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *notificacionAdapter) MarkAllRead(ctx context.Context, usuarioID string) (int64, error) {
	req := UserRequest{UsuarioID: usuarioID}
	var resp MarkAllResponse
	if err := call(ctx, a.container, "mark-all-leidas", &req, &resp); err != nil {
		return 0, err
	}
	return resp.Actualizadas, nil
}

func (a *notificacionAdapter) Delete(ctx context.Context, usuarioID, id string) error {
	req := ItemRequest{UsuarioID: usuarioID, ID: id}
	var resp DeleteResponse
	if err := call(ctx, a.container, "delete", &req, &resp); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("notificacion not deleted: %s", id)
	}
	return nil
}

func (a *notificacionAdapter) PurgeRead(ctx context.Context, usuarioID string) (int64, error) {
	req := UserRequest{UsuarioID: usuarioID}
	var resp PurgeResponse
	if err := call(ctx, a.container, "purge-leidas", &req, &resp); err != nil {
		return 0, err
	}
	return resp.Eliminadas, nil
}

func (a *notificacionAdapter) DeleteByTarea(ctx context.Context, tareaID string) (int64, error) {
	req := DeleteByTareaRequest{TareaID: tareaID}
	var resp PurgeResponse
	if err := call(ctx, a.container, "delete-by-tarea", &req, &resp); err != nil {
		return 0, err
	}
	return resp.Eliminadas, nil
}

// mapServiceError maps service errors to domain errors.
// Errors lose their type information when sent over NATS.
func mapServiceError(service string, err error) error {
	if err == nil {
		return nil
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, ErrNotificacionNotFound.Error()):
		return ErrNotificacionNotFound
	case strings.Contains(errMsg, ErrForbidden.Error()):
		return ErrForbidden
	case strings.Contains(errMsg, ErrValidation.Error()):
		return fmt.Errorf("%w: %s", ErrValidation, detailAfter(err.Error(), ErrValidation.Error()+": "))
	}
	return fmt.Errorf("%s service call failed: %w", service, err)
}

// detailAfter returns the text following marker, or msg when marker is absent.
func detailAfter(msg, marker string) string {
	if i := strings.Index(strings.ToLower(msg), marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
