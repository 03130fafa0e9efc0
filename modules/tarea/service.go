package tarea

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	notif "github.com/jegu600/Gestion360/domain/notificacion"
	domain "github.com/jegu600/Gestion360/domain/tarea"
	"github.com/jegu600/Gestion360/domain/usuario"
)

const minTituloLength = 3

// UserDirectory resolves responsable ids.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Publisher receives lifecycle events after each committed mutation.
type Publisher interface {
	Created(t *domain.Tarea, actor usuario.Actor)
	Updated(prev, next *domain.Tarea, actor usuario.Actor)
	StatusChanged(prev domain.Estado, t *domain.Tarea, actor usuario.Actor)
	Deleted(t *domain.Tarea, actor usuario.Actor)
}

// Fields carries task input. Nil fields are absent; on update they keep
// their stored value.
type Fields struct {
	Titulo      *string `json:"titulo,omitempty"`
	Descripcion *string `json:"descripcion,omitempty"`
	FechaLimite *string `json:"fechaLimite,omitempty"`
	Responsable *string `json:"responsable,omitempty"`
	Prioridad   *string `json:"prioridad,omitempty"`
	Estado      *string `json:"estado,omitempty"`
}

// Result is the outcome of a mutation: the stored task and the
// notifications derived from it.
type Result struct {
	Tarea  *domain.Tarea
	Avisos []notif.Request
}

// Service is the task lifecycle engine.
type Service struct {
	repo      *Repository
	users     UserDirectory
	fanout    *fanout
	publisher Publisher
	policy    Policy
	now       func() time.Time
}

// NewService creates a new Service. publisher may be nil.
func NewService(repo *Repository, users UserDirectory, notifier Notifier, publisher Publisher, policy Policy) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		fanout:    &fanout{notifier: notifier},
		publisher: publisher,
		policy:    policy,
		now:       time.Now,
	}
}

// FanoutStats reports notification delivery outcomes.
func (s *Service) FanoutStats() FanoutStats {
	return s.fanout.stats()
}

// Create validates and stores a new task owned by actor.
func (s *Service) Create(ctx context.Context, actor usuario.Actor, in Fields) (*Result, error) {
	verr := &ValidationError{}
	titulo := validateTitulo(verr, in.Titulo, true)
	descripcion := validateDescripcion(verr, in.Descripcion, true)
	fechaLimite := validateFechaLimite(verr, in.FechaLimite, true)
	prioridad := validatePrioridad(verr, in.Prioridad)
	if prioridad == "" {
		prioridad = domain.PrioridadMedia
	}

	responsable := actor.ID
	explicit := in.Responsable != nil && strings.TrimSpace(*in.Responsable) != ""
	if explicit {
		responsable = strings.TrimSpace(*in.Responsable)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if explicit {
		if err := s.ensureUser(ctx, responsable); err != nil {
			return nil, err
		}
	}

	now := s.now()
	t := &domain.Tarea{
		ID:            uuid.New().String(),
		Titulo:        titulo,
		Descripcion:   descripcion,
		Estado:        domain.EstadoPendiente,
		FechaCreacion: now,
		FechaLimite:   fechaLimite,
		Responsable:   responsable,
		CreadoPor:     actor.ID,
		Prioridad:     prioridad,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Created(t, actor)
	}
	return s.finish(ctx, t, avisosCreacion(t, actor)), nil
}

// Get returns a task the actor may read.
func (s *Service) Get(ctx context.Context, actor usuario.Actor, id string) (*domain.Tarea, error) {
	return s.load(ctx, actor, id, ActionRead)
}

// List returns the tasks visible to actor: every task for admins,
// otherwise those the actor created or is responsible for.
func (s *Service) List(ctx context.Context, actor usuario.Actor) ([]domain.Tarea, error) {
	return s.repo.List(ctx, visibleTo(actor))
}

// ListByEstado is List restricted to one state.
func (s *Service) ListByEstado(ctx context.Context, actor usuario.Actor, estado string) ([]domain.Tarea, error) {
	e, err := domain.ParseEstado(estado)
	if err != nil {
		verr := &ValidationError{}
		verr.add("estado", estadoMessage())
		return nil, verr
	}

	filter := visibleTo(actor)
	filter.Estado = e
	return s.repo.List(ctx, filter)
}

// UpdateFull merges the present fields into the task.
func (s *Service) UpdateFull(ctx context.Context, actor usuario.Actor, id string, in Fields) (*Result, error) {
	prev, err := s.load(ctx, actor, id, ActionUpdate)
	if err != nil {
		return nil, err
	}

	next := *prev
	columns := map[string]any{}
	verr := &ValidationError{}

	if in.Titulo != nil {
		next.Titulo = validateTitulo(verr, in.Titulo, true)
		columns["titulo"] = next.Titulo
	}
	if in.Descripcion != nil {
		next.Descripcion = validateDescripcion(verr, in.Descripcion, true)
		columns["descripcion"] = next.Descripcion
	}
	if in.FechaLimite != nil {
		next.FechaLimite = validateFechaLimite(verr, in.FechaLimite, true)
		columns["fecha_limite"] = next.FechaLimite
	}
	if in.Prioridad != nil {
		next.Prioridad = validatePrioridad(verr, in.Prioridad)
		columns["prioridad"] = next.Prioridad
	}
	if in.Estado != nil {
		e, err := domain.ParseEstado(strings.TrimSpace(*in.Estado))
		if err != nil {
			verr.add("estado", estadoMessage())
		}
		next.Estado = e
		columns["estado"] = next.Estado
	}
	if in.Responsable != nil {
		next.Responsable = strings.TrimSpace(*in.Responsable)
		if next.Responsable == "" {
			verr.add("responsable", "must not be empty")
		}
		columns["responsable"] = next.Responsable
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if next.Responsable != prev.Responsable {
		if err := s.ensureUser(ctx, next.Responsable); err != nil {
			return nil, err
		}
	}

	next.UpdatedAt = s.now()
	columns["updated_at"] = next.UpdatedAt
	if err := s.repo.Update(ctx, id, columns); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Updated(prev, &next, actor)
	}
	return s.finish(ctx, &next, avisosActualizacion(prev, &next, actor, s.policy)), nil
}

// ChangeStatus moves the task to estado. Requesting the current state is a
// no-op.
func (s *Service) ChangeStatus(ctx context.Context, actor usuario.Actor, id, estado string) (*Result, error) {
	requested, err := domain.ParseEstado(strings.TrimSpace(estado))
	if err != nil {
		verr := &ValidationError{}
		verr.add("estado", estadoMessage())
		return nil, verr
	}

	prev, err := s.load(ctx, actor, id, ActionUpdate)
	if err != nil {
		return nil, err
	}

	newState, change := domain.Transition(prev.Estado, requested)
	if change == domain.ChangeNone {
		return &Result{Tarea: prev}, nil
	}

	next := *prev
	next.Estado = newState
	next.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, id, map[string]any{
		"estado":     next.Estado,
		"updated_at": next.UpdatedAt,
	}); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.StatusChanged(prev.Estado, &next, actor)
	}
	return s.finish(ctx, &next, avisosEstado(&next, change, actor)), nil
}

// Delete removes the task and then every notification about it. A failed
// cascade is reported as ErrCascadeFailed; the Deleted event lets the
// notification side reconcile later.
func (s *Service) Delete(ctx context.Context, actor usuario.Actor, id string) (*Result, error) {
	t, err := s.load(ctx, actor, id, ActionDelete)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Deleted(t, actor)
	}

	if _, err := s.fanout.notifier.DeleteByTarea(ctx, id); err != nil {
		return &Result{Tarea: t}, fmt.Errorf("%w: %v", ErrCascadeFailed, err)
	}
	return &Result{Tarea: t}, nil
}

// load finds a task and authorizes action on it. A missing task is
// reported before any permission failure.
func (s *Service) load(ctx context.Context, actor usuario.Actor, id string, action Action) (*domain.Tarea, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, t, action); err != nil {
		return nil, err
	}
	return t, nil
}

// finish runs the fan-out after the mutation is stored. Its outcome does
// not change the result.
func (s *Service) finish(ctx context.Context, t *domain.Tarea, avisos []notif.Request) *Result {
	s.fanout.deliver(ctx, avisos)
	return &Result{Tarea: t, Avisos: avisos}
}

func (s *Service) ensureUser(ctx context.Context, userID string) error {
	ok, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve responsable: %w", err)
	}
	if !ok {
		return ErrUsuarioNotFound
	}
	return nil
}

func visibleTo(actor usuario.Actor) ListFilter {
	if actor.IsAdmin() {
		return ListFilter{}
	}
	return ListFilter{Participant: actor.ID}
}

func validateTitulo(verr *ValidationError, v *string, required bool) string {
	if v == nil {
		if required {
			verr.add("titulo", "is required")
		}
		return ""
	}
	titulo := strings.TrimSpace(*v)
	if utf8.RuneCountInString(titulo) < minTituloLength {
		verr.add("titulo", fmt.Sprintf("must be at least %d characters", minTituloLength))
	}
	return titulo
}

func validateDescripcion(verr *ValidationError, v *string, required bool) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		if required {
			verr.add("descripcion", "is required")
		}
		return ""
	}
	return strings.TrimSpace(*v)
}

func validateFechaLimite(verr *ValidationError, v *string, required bool) time.Time {
	if v == nil || strings.TrimSpace(*v) == "" {
		if required {
			verr.add("fechaLimite", "is required")
		}
		return time.Time{}
	}
	fecha, err := ParseFecha(*v)
	if err != nil {
		verr.add("fechaLimite", "must be an RFC 3339 timestamp or YYYY-MM-DD date")
	}
	return fecha
}

func validatePrioridad(verr *ValidationError, v *string) domain.Prioridad {
	if v == nil {
		return ""
	}
	p, err := domain.ParsePrioridad(strings.TrimSpace(*v))
	if err != nil {
		verr.add("prioridad", "must be one of Baja, Media, Alta, Urgente")
	}
	return p
}

func estadoMessage() string {
	names := make([]string, 0, len(domain.Estados))
	for _, e := range domain.Estados {
		names = append(names, string(e))
	}
	return "must be one of " + strings.Join(names, ", ")
}

// ParseFecha accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date.
func ParseFecha(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
