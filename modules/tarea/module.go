package tarea

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/jegu600/Gestion360/config"
	domain "github.com/jegu600/Gestion360/domain/tarea"
	"github.com/jegu600/Gestion360/domain/usuario"
	"github.com/jegu600/Gestion360/events"
	"github.com/jegu600/Gestion360/internal/database"
	"github.com/jegu600/Gestion360/modules/auth"
	"github.com/jegu600/Gestion360/modules/notificacion"
	"gorm.io/gorm"
)

// TareaModule provides task management services and runs the lifecycle
// engine.
type TareaModule struct {
	dbPath string
	debug  bool
	policy Policy

	db       *gorm.DB
	service  *Service
	users    auth.AuthPort
	notifier notificacion.NotificacionPort
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*TareaModule)(nil)
	_ mono.ServiceProviderModule = (*TareaModule)(nil)
	_ mono.DependentModule       = (*TareaModule)(nil)
	_ mono.EventBusAwareModule   = (*TareaModule)(nil)
	_ mono.EventEmitterModule    = (*TareaModule)(nil)
	_ mono.HealthCheckableModule = (*TareaModule)(nil)
)

// NewModule creates a new TareaModule.
func NewModule(cfg *config.Config) *TareaModule {
	return &TareaModule{
		dbPath: cfg.Database.TareasPath,
		debug:  cfg.Database.Debug,
		policy: Policy{DualNotifyOnReassign: cfg.Tareas.DualNotifyOnReassign},
	}
}

// Name returns the module name.
func (m *TareaModule) Name() string {
	return "tarea"
}

// Dependencies returns the modules this module depends on.
func (m *TareaModule) Dependencies() []string {
	return []string{"auth", "notificacion"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *TareaModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.users = auth.NewAuthAdapter(container)
	case "notificacion":
		m.notifier = notificacion.NewNotificacionAdapter(container)
	}
}

// SetEventBus receives the EventBus from the framework.
func (m *TareaModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *TareaModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TareaCreadaV1.ToBase(),
		events.TareaActualizadaV1.ToBase(),
		events.TareaEstadoCambiadoV1.ToBase(),
		events.TareaEliminadaV1.ToBase(),
	}
}

// Start opens the store and wires the engine to its dependencies.
func (m *TareaModule) Start(_ context.Context) error {
	if m.users == nil {
		return errors.New("required dependency 'auth' not initialized")
	}
	if m.notifier == nil {
		return errors.New("required dependency 'notificacion' not initialized")
	}

	db, err := database.Open(m.dbPath, m.debug, &domain.Tarea{})
	if err != nil {
		return err
	}
	m.db = db

	var publisher Publisher
	if m.eventBus != nil {
		publisher = &busPublisher{bus: m.eventBus}
	} else {
		log.Println("[tarea] Warning: eventBus not set, events will not be published")
	}

	m.service = NewService(NewRepository(db), m.users, m.notifier, publisher, m.policy)
	log.Printf("[tarea] Module started (database: %s, dual notify on reassign: %t)", m.dbPath, m.policy.DualNotifyOnReassign)
	return nil
}

// Stop closes the database.
func (m *TareaModule) Stop(_ context.Context) error {
	if err := database.Close(m.db); err != nil {
		log.Printf("[tarea] Warning: %v", err)
	}
	log.Println("[tarea] Module stopped")
	return nil
}

// Health reports the database status and fan-out counters.
func (m *TareaModule) Health(ctx context.Context) mono.HealthStatus {
	details := map[string]any{
		"dual_notify_on_reassign": m.policy.DualNotifyOnReassign,
	}
	if m.service != nil {
		details["fanout"] = m.service.FanoutStats()
	}
	return database.Health(ctx, m.db, m.dbPath, details)
}

// RegisterServices registers request-reply services in the service container.
func (m *TareaModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.handleCreate,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.handleGet,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-by-estado", json.Unmarshal, json.Marshal, m.handleListByEstado,
	); err != nil {
		return fmt.Errorf("failed to register list-by-estado service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.handleUpdate,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "change-estado", json.Unmarshal, json.Marshal, m.handleChangeEstado,
	); err != nil {
		return fmt.Errorf("failed to register change-estado service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	log.Printf("[tarea] Registered services: services.tarea.{create,get,list,list-by-estado,update,change-estado,delete}")
	return nil
}

func (m *TareaModule) handleCreate(ctx context.Context, req CreateRequest, _ *mono.Msg) (TareaResponse, error) {
	result, err := m.service.Create(ctx, req.Actor, req.Fields)
	if err != nil {
		return TareaResponse{}, err
	}
	return toResponse(result), nil
}

func (m *TareaModule) handleGet(ctx context.Context, req GetRequest, _ *mono.Msg) (TareaResponse, error) {
	t, err := m.service.Get(ctx, req.Actor, req.ID)
	if err != nil {
		return TareaResponse{}, err
	}
	return TareaResponse{Tarea: *t}, nil
}

func (m *TareaModule) handleList(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	tareas, err := m.service.List(ctx, req.Actor)
	if err != nil {
		return ListResponse{}, err
	}
	return toListResponse(tareas), nil
}

func (m *TareaModule) handleListByEstado(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	tareas, err := m.service.ListByEstado(ctx, req.Actor, req.Estado)
	if err != nil {
		return ListResponse{}, err
	}
	return toListResponse(tareas), nil
}

func (m *TareaModule) handleUpdate(ctx context.Context, req UpdateRequest, _ *mono.Msg) (TareaResponse, error) {
	result, err := m.service.UpdateFull(ctx, req.Actor, req.ID, req.Fields)
	if err != nil {
		return TareaResponse{}, err
	}
	return toResponse(result), nil
}

func (m *TareaModule) handleChangeEstado(ctx context.Context, req ChangeEstadoRequest, _ *mono.Msg) (TareaResponse, error) {
	result, err := m.service.ChangeStatus(ctx, req.Actor, req.ID, req.Estado)
	if err != nil {
		return TareaResponse{}, err
	}
	return toResponse(result), nil
}

func (m *TareaModule) handleDelete(ctx context.Context, req DeleteRequest, _ *mono.Msg) (DeleteResponse, error) {
	if _, err := m.service.Delete(ctx, req.Actor, req.ID); err != nil {
		return DeleteResponse{}, err
	}
	return DeleteResponse{Deleted: true, ID: req.ID}, nil
}

func toResponse(result *Result) TareaResponse {
	return TareaResponse{Tarea: *result.Tarea, Avisos: result.Avisos}
}

func toListResponse(tareas []domain.Tarea) ListResponse {
	if tareas == nil {
		tareas = []domain.Tarea{}
	}
	return ListResponse{Tareas: tareas, Total: len(tareas)}
}

// busPublisher publishes lifecycle events on the framework event bus.
// Publishing is best effort: failures are logged.
type busPublisher struct {
	bus mono.EventBus
}

func (p *busPublisher) Created(t *domain.Tarea, actor usuario.Actor) {
	event := events.TareaCreadaEvent{
		TareaID:     t.ID,
		Titulo:      t.Titulo,
		Estado:      string(t.Estado),
		Prioridad:   string(t.Prioridad),
		Responsable: t.Responsable,
		CreadoPor:   t.CreadoPor,
		ActorID:     actor.ID,
		CreatedAt:   t.FechaCreacion,
	}
	if err := events.TareaCreadaV1.Publish(p.bus, event, nil); err != nil {
		log.Printf("[tarea] Warning: failed to publish TareaCreada event for %s: %v", t.ID, err)
	}
}

func (p *busPublisher) Updated(prev, next *domain.Tarea, actor usuario.Actor) {
	event := events.TareaActualizadaEvent{
		TareaID:     next.ID,
		Titulo:      next.Titulo,
		Responsable: next.Responsable,
		CreadoPor:   next.CreadoPor,
		ActorID:     actor.ID,
		UpdatedAt:   next.UpdatedAt,
	}
	if prev.Responsable != next.Responsable {
		event.ResponsableAnterior = prev.Responsable
	}
	if err := events.TareaActualizadaV1.Publish(p.bus, event, nil); err != nil {
		log.Printf("[tarea] Warning: failed to publish TareaActualizada event for %s: %v", next.ID, err)
	}
}

func (p *busPublisher) StatusChanged(prev domain.Estado, t *domain.Tarea, actor usuario.Actor) {
	event := events.TareaEstadoCambiadoEvent{
		TareaID:        t.ID,
		Titulo:         t.Titulo,
		EstadoAnterior: string(prev),
		Estado:         string(t.Estado),
		Responsable:    t.Responsable,
		CreadoPor:      t.CreadoPor,
		ActorID:        actor.ID,
		ChangedAt:      t.UpdatedAt,
	}
	if err := events.TareaEstadoCambiadoV1.Publish(p.bus, event, nil); err != nil {
		log.Printf("[tarea] Warning: failed to publish TareaEstadoCambiado event for %s: %v", t.ID, err)
	}
}

func (p *busPublisher) Deleted(t *domain.Tarea, actor usuario.Actor) {
	event := events.TareaEliminadaEvent{
		TareaID:     t.ID,
		Responsable: t.Responsable,
		CreadoPor:   t.CreadoPor,
		ActorID:     actor.ID,
		DeletedAt:   time.Now(),
	}
	if err := events.TareaEliminadaV1.Publish(p.bus, event, nil); err != nil {
		log.Printf("[tarea] Warning: failed to publish TareaEliminada event for %s: %v", t.ID, err)
	}
}
