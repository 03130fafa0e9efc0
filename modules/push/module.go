package push

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/jegu600/Gestion360/events"
)

// Message types pushed to clients.
const (
	TypeConnected           = "connected"
	TypeNotificacion        = "notificacion"
	TypeTareaCreada         = "tarea_creada"
	TypeTareaActualizada    = "tarea_actualizada"
	TypeTareaEstadoCambiado = "tarea_estado_cambiado"
	TypeTareaEliminada      = "tarea_eliminada"
)

// PushModule forwards notification and task events to connected users.
type PushModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*PushModule)(nil)
	_ mono.EventConsumerModule   = (*PushModule)(nil)
	_ mono.HealthCheckableModule = (*PushModule)(nil)
)

// NewModule creates a new PushModule.
func NewModule() *PushModule {
	return &PushModule{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *PushModule) Name() string {
	return "push"
}

// Start runs the hub.
func (m *PushModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[push] Module started - WebSocket hub running")
	return nil
}

// Stop shuts the hub down and closes every connection.
func (m *PushModule) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Printf("[push] Module stopped - %d clients were connected", clientCount)
	return nil
}

// Health returns the health status.
func (m *PushModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
			"connected_users":   m.hub.UserCount(),
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *PushModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.NotificacionCreadaV1, m.handleNotificacionCreada, m,
	); err != nil {
		return fmt.Errorf("failed to register NotificacionCreada consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TareaCreadaV1, m.handleTareaCreada, m,
	); err != nil {
		return fmt.Errorf("failed to register TareaCreada consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TareaActualizadaV1, m.handleTareaActualizada, m,
	); err != nil {
		return fmt.Errorf("failed to register TareaActualizada consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TareaEstadoCambiadoV1, m.handleTareaEstadoCambiado, m,
	); err != nil {
		return fmt.Errorf("failed to register TareaEstadoCambiado consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TareaEliminadaV1, m.handleTareaEliminada, m,
	); err != nil {
		return fmt.Errorf("failed to register TareaEliminada consumer: %w", err)
	}

	log.Println("[push] Registered event consumers: NotificacionCreada, TareaCreada, TareaActualizada, TareaEstadoCambiado, TareaEliminada")
	return nil
}

func (m *PushModule) handleNotificacionCreada(_ context.Context, event events.NotificacionCreadaEvent, _ *mono.Msg) error {
	m.hub.SendToUsers([]string{event.UsuarioID}, TypeNotificacion, event)
	return nil
}

func (m *PushModule) handleTareaCreada(_ context.Context, event events.TareaCreadaEvent, _ *mono.Msg) error {
	m.hub.SendToUsers(recipients(event.CreadoPor, event.Responsable), TypeTareaCreada, event)
	return nil
}

func (m *PushModule) handleTareaActualizada(_ context.Context, event events.TareaActualizadaEvent, _ *mono.Msg) error {
	m.hub.SendToUsers(
		recipients(event.CreadoPor, event.Responsable, event.ResponsableAnterior),
		TypeTareaActualizada, event,
	)
	return nil
}

func (m *PushModule) handleTareaEstadoCambiado(_ context.Context, event events.TareaEstadoCambiadoEvent, _ *mono.Msg) error {
	m.hub.SendToUsers(recipients(event.CreadoPor, event.Responsable), TypeTareaEstadoCambiado, event)
	return nil
}

func (m *PushModule) handleTareaEliminada(_ context.Context, event events.TareaEliminadaEvent, _ *mono.Msg) error {
	m.hub.SendToUsers(recipients(event.CreadoPor, event.Responsable), TypeTareaEliminada, event)
	return nil
}

// GetHub returns the WebSocket hub for the API module to use.
func (m *PushModule) GetHub() *Hub {
	return m.hub
}

// recipients returns the distinct non-empty user ids.
func recipients(ids ...string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
