package notificacion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/jegu600/Gestion360/config"
	domain "github.com/jegu600/Gestion360/domain/notificacion"
	"github.com/jegu600/Gestion360/events"
	"github.com/jegu600/Gestion360/internal/database"
	"gorm.io/gorm"
)

// NotificacionModule owns the notification inbox and the unread counter
// cache.
type NotificacionModule struct {
	dbPath   string
	debug    bool
	redisCfg config.RedisConfig

	db       *gorm.DB
	counter  *UnreadCounter
	service  *Service
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*NotificacionModule)(nil)
	_ mono.ServiceProviderModule = (*NotificacionModule)(nil)
	_ mono.EventBusAwareModule   = (*NotificacionModule)(nil)
	_ mono.EventEmitterModule    = (*NotificacionModule)(nil)
	_ mono.EventConsumerModule   = (*NotificacionModule)(nil)
	_ mono.HealthCheckableModule = (*NotificacionModule)(nil)
)

// NewModule creates a new NotificacionModule.
func NewModule(cfg *config.Config) *NotificacionModule {
	return &NotificacionModule{
		dbPath:   cfg.Database.NotificacionesPath,
		debug:    cfg.Database.Debug,
		redisCfg: cfg.Redis,
	}
}

// Name returns the module name.
func (m *NotificacionModule) Name() string {
	return "notificacion"
}

// SetEventBus receives the EventBus from the framework.
func (m *NotificacionModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *NotificacionModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.NotificacionCreadaV1.ToBase(),
	}
}

// RegisterEventConsumers subscribes to task deletions to reconcile the
// notification cascade.
func (m *NotificacionModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.TareaEliminadaV1, m.handleTareaEliminada, m,
	); err != nil {
		return fmt.Errorf("failed to register TareaEliminada consumer: %w", err)
	}

	log.Println("[notificacion] Registered event consumers: TareaEliminada")
	return nil
}

// Start opens the store and, when configured, the Redis counter cache.
func (m *NotificacionModule) Start(ctx context.Context) error {
	db, err := database.Open(m.dbPath, m.debug, &domain.Notificacion{})
	if err != nil {
		return err
	}
	m.db = db

	var counter CounterCache
	if m.redisCfg.Enabled() {
		c := NewUnreadCounter(NewRedisClient(m.redisCfg.Addr), m.redisCfg.Prefix, m.redisCfg.CacheTTL)
		if err := c.Ping(ctx); err != nil {
			log.Printf("[notificacion] Warning: Redis unavailable at %s, counting from database: %v", m.redisCfg.Addr, err)
			_ = c.Close()
		} else {
			m.counter = c
			counter = c
		}
	}

	m.service = NewService(NewRepository(db), counter)
	if m.eventBus == nil {
		log.Println("[notificacion] Warning: eventBus not set, events will not be published")
	}

	log.Printf("[notificacion] Module started (database: %s, counter cache: %t)", m.dbPath, m.counter != nil)
	return nil
}

// Stop closes the database and the Redis client.
func (m *NotificacionModule) Stop(_ context.Context) error {
	if m.counter != nil {
		if err := m.counter.Close(); err != nil {
			log.Printf("[notificacion] Warning: failed to close Redis client: %v", err)
		}
	}
	if err := database.Close(m.db); err != nil {
		log.Printf("[notificacion] Warning: %v", err)
	}
	log.Println("[notificacion] Module stopped")
	return nil
}

// Health reports the database status and counter cache statistics.
func (m *NotificacionModule) Health(ctx context.Context) mono.HealthStatus {
	details := map[string]any{"counter_cache": "disabled"}
	if m.counter != nil {
		if err := m.counter.Ping(ctx); err != nil {
			details["counter_cache"] = fmt.Sprintf("unavailable: %v", err)
		} else {
			details["counter_cache"] = m.counter.Stats()
		}
	}
	return database.Health(ctx, m.db, m.dbPath, details)
}

// RegisterServices registers request-reply services in the service container.
func (m *NotificacionModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.handleCreate,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-no-leidas", json.Unmarshal, json.Marshal, m.handleUnread,
	); err != nil {
		return fmt.Errorf("failed to register list-no-leidas service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "count-no-leidas", json.Unmarshal, json.Marshal, m.handleCount,
	); err != nil {
		return fmt.Errorf("failed to register count-no-leidas service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "mark-leida", json.Unmarshal, json.Marshal, m.handleMarkRead,
	); err != nil {
		return fmt.Errorf("failed to register mark-leida service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "mark-all-leidas", json.Unmarshal, json.Marshal, m.handleMarkAllRead,
	); err != nil {
		return fmt.Errorf("failed to register mark-all-leidas service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "purge-leidas", json.Unmarshal, json.Marshal, m.handlePurgeRead,
	); err != nil {
		return fmt.Errorf("failed to register purge-leidas service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-by-tarea", json.Unmarshal, json.Marshal, m.handleDeleteByTarea,
	); err != nil {
		return fmt.Errorf("failed to register delete-by-tarea service: %w", err)
	}

	log.Printf("[notificacion] Registered services: services.notificacion.{create,list,list-no-leidas,count-no-leidas,mark-leida,mark-all-leidas,delete,purge-leidas,delete-by-tarea}")
	return nil
}

func (m *NotificacionModule) handleCreate(ctx context.Context, req CreateRequest, _ *mono.Msg) (domain.Notificacion, error) {
	n, err := m.service.Create(ctx, req)
	if err != nil {
		return domain.Notificacion{}, err
	}

	if m.eventBus != nil {
		event := events.NotificacionCreadaEvent{
			NotificacionID: n.ID,
			UsuarioID:      n.UsuarioID,
			TareaID:        n.TareaID,
			Mensaje:        n.Mensaje,
			Tipo:           string(n.Tipo),
			Prioridad:      string(n.Prioridad),
			Fecha:          n.Fecha,
		}
		if err := events.NotificacionCreadaV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[notificacion] Warning: failed to publish NotificacionCreada event for %s: %v", n.ID, err)
		}
	}

	return *n, nil
}

func (m *NotificacionModule) handleList(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	result, err := m.service.List(ctx, req.UsuarioID, req.Leida, req.Limit)
	if err != nil {
		return ListResponse{}, err
	}
	return ListResponse{
		Notificaciones: nonNil(result.Notificaciones),
		NoLeidas:       result.NoLeidas,
		Total:          len(result.Notificaciones),
	}, nil
}

func (m *NotificacionModule) handleUnread(ctx context.Context, req UserRequest, _ *mono.Msg) (UnreadResponse, error) {
	list, err := m.service.Unread(ctx, req.UsuarioID)
	if err != nil {
		return UnreadResponse{}, err
	}
	return UnreadResponse{Notificaciones: nonNil(list), Total: len(list)}, nil
}

func (m *NotificacionModule) handleCount(ctx context.Context, req UserRequest, _ *mono.Msg) (CountResponse, error) {
	count, err := m.service.CountUnread(ctx, req.UsuarioID)
	if err != nil {
		return CountResponse{}, err
	}
	return CountResponse{NoLeidas: count}, nil
}

func (m *NotificacionModule) handleMarkRead(ctx context.Context, req ItemRequest, _ *mono.Msg) (domain.Notificacion, error) {
	n, err := m.service.MarkRead(ctx, req.UsuarioID, req.ID)
	if err != nil {
		return domain.Notificacion{}, err
	}
	return *n, nil
}

func (m *NotificacionModule) handleMarkAllRead(ctx context.Context, req UserRequest, _ *mono.Msg) (MarkAllResponse, error) {
	updated, err := m.service.MarkAllRead(ctx, req.UsuarioID)
	if err != nil {
		return MarkAllResponse{}, err
	}
	return MarkAllResponse{Actualizadas: updated}, nil
}

func (m *NotificacionModule) handleDelete(ctx context.Context, req ItemRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.service.Delete(ctx, req.UsuarioID, req.ID); err != nil {
		return DeleteResponse{}, err
	}
	return DeleteResponse{Deleted: true}, nil
}

func (m *NotificacionModule) handlePurgeRead(ctx context.Context, req UserRequest, _ *mono.Msg) (PurgeResponse, error) {
	deleted, err := m.service.PurgeRead(ctx, req.UsuarioID)
	if err != nil {
		return PurgeResponse{}, err
	}
	return PurgeResponse{Eliminadas: deleted}, nil
}

func (m *NotificacionModule) handleDeleteByTarea(ctx context.Context, req DeleteByTareaRequest, _ *mono.Msg) (PurgeResponse, error) {
	deleted, err := m.service.DeleteByTarea(ctx, req.TareaID)
	if err != nil {
		return PurgeResponse{}, err
	}
	return PurgeResponse{Eliminadas: deleted}, nil
}

// handleTareaEliminada re-runs the cascade so a failed synchronous delete is
// eventually reconciled.
func (m *NotificacionModule) handleTareaEliminada(ctx context.Context, event events.TareaEliminadaEvent, _ *mono.Msg) error {
	deleted, err := m.service.DeleteByTarea(ctx, event.TareaID)
	if err != nil {
		log.Printf("[notificacion] Warning: cascade for tarea %s failed: %v", event.TareaID, err)
		return err
	}
	if deleted > 0 {
		log.Printf("[notificacion] Reconciled %d notificaciones for deleted tarea %s", deleted, event.TareaID)
	}
	return nil
}

func nonNil(list []domain.Notificacion) []domain.Notificacion {
	if list == nil {
		return []domain.Notificacion{}
	}
	return list
}
