package tarea

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	domain "github.com/jegu600/Gestion360/domain/tarea"
	"github.com/jegu600/Gestion360/domain/usuario"
)

// TareaPort is how other modules reach the task engine.
type TareaPort interface {
	Create(ctx context.Context, actor usuario.Actor, fields Fields) (*TareaResponse, error)
	Get(ctx context.Context, actor usuario.Actor, id string) (*domain.Tarea, error)
	List(ctx context.Context, actor usuario.Actor) (*ListResponse, error)
	ListByEstado(ctx context.Context, actor usuario.Actor, estado string) (*ListResponse, error)
	Update(ctx context.Context, actor usuario.Actor, id string, fields Fields) (*TareaResponse, error)
	ChangeEstado(ctx context.Context, actor usuario.Actor, id, estado string) (*TareaResponse, error)
	Delete(ctx context.Context, actor usuario.Actor, id string) error
}

// tareaAdapter wraps ServiceContainer for type-safe cross-module communication.
type tareaAdapter struct {
	container mono.ServiceContainer
}

// NewTareaAdapter creates a new adapter for task services.
func NewTareaAdapter(container mono.ServiceContainer) TareaPort {
	if container == nil {
		panic("tarea adapter requires non-nil ServiceContainer")
	}
	return &tareaAdapter{container: container}
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

func (a *tareaAdapter) Create(ctx context.Context, actor usuario.Actor, fields Fields) (*TareaResponse, error) {
	req := CreateRequest{Actor: actor, Fields: fields}
	var resp TareaResponse
	if err := call(ctx, a.container, "create", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *tareaAdapter) Get(ctx context.Context, actor usuario.Actor, id string) (*domain.Tarea, error) {
	req := GetRequest{Actor: actor, ID: id}
	var resp TareaResponse
	if err := call(ctx, a.container, "get", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.Tarea, nil
}

func (a *tareaAdapter) List(ctx context.Context, actor usuario.Actor) (*ListResponse, error) {
	req := ListRequest{Actor: actor}
	var resp ListResponse
	if err := call(ctx, a.container, "list", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *tareaAdapter) ListByEstado(ctx context.Context, actor usuario.Actor, estado string) (*ListResponse, error) {
	req := ListRequest{Actor: actor, Estado: estado}
	var resp ListResponse
	if err := call(ctx, a.container, "list-by-estado", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *tareaAdapter) Update(ctx context.Context, actor usuario.Actor, id string, fields Fields) (*TareaResponse, error) {
	req := UpdateRequest{Actor: actor, ID: id, Fields: fields}
	var resp TareaResponse
	if err := call(ctx, a.container, "update", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *tareaAdapter) ChangeEstado(ctx context.Context, actor usuario.Actor, id, estado string) (*TareaResponse, error) {
	req := ChangeEstadoRequest{Actor: actor, ID: id, Estado: estado}
	var resp TareaResponse
	if err := call(ctx, a.container, "change-estado", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *tareaAdapter) Delete(ctx context.Context, actor usuario.Actor, id string) error {
	req := DeleteRequest{Actor: actor, ID: id}
	var resp DeleteResponse
	if err := call(ctx, a.container, "delete", &req, &resp); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("tarea not deleted: %s", id)
	}
	return nil
}

// mapServiceError maps service errors to domain errors.
// Errors lose their type information when sent over NATS, so validation
// failures are rebuilt from their rendered field list.
func mapServiceError(service string, err error) error {
	if err == nil {
		return nil
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, ErrCascadeFailed.Error()):
		return fmt.Errorf("%w: %s", ErrCascadeFailed, err.Error())
	case strings.Contains(errMsg, ErrValidation.Error()):
		return parseValidationError(err.Error())
	case strings.Contains(errMsg, ErrUsuarioNotFound.Error()):
		return ErrUsuarioNotFound
	case strings.Contains(errMsg, ErrTareaNotFound.Error()):
		return ErrTareaNotFound
	case strings.Contains(errMsg, ErrForbidden.Error()):
		return ErrForbidden
	}
	return fmt.Errorf("%s service call failed: %w", service, err)
}
