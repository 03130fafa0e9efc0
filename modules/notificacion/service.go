package notificacion

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/jegu600/Gestion360/domain/notificacion"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultListLimit is used when a listing does not ask for a size.
	DefaultListLimit = 20
	// MaxListLimit caps any listing.
	MaxListLimit = 100
	// UnreadListLimit is the size of the unread preview.
	UnreadListLimit = 10
)

// ListResult is one page of a user's inbox.
type ListResult struct {
	Notificaciones []domain.Notificacion
	NoLeidas       int64
}

// Service implements the notification inbox.
type Service struct {
	repo    *Repository
	counter CounterCache
	sfGroup singleflight.Group
	now     func() time.Time
}

// NewService creates a new Service. counter may be nil, in which case
// counts are always read from the database.
func NewService(repo *Repository, counter CounterCache) *Service {
	return &Service{
		repo:    repo,
		counter: counter,
		now:     time.Now,
	}
}

// Create validates and stores a notification request.
func (s *Service) Create(ctx context.Context, req domain.Request) (*domain.Notificacion, error) {
	mensaje := strings.TrimSpace(req.Mensaje)
	if mensaje == "" {
		return nil, fmt.Errorf("%w: mensaje is required", ErrValidation)
	}
	if strings.TrimSpace(req.UsuarioID) == "" {
		return nil, fmt.Errorf("%w: usuario_id is required", ErrValidation)
	}

	tipo := req.Tipo
	if tipo == "" {
		tipo = domain.TipoSistema
	}
	if !tipo.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrValidation, domain.ErrInvalidTipo)
	}

	prioridad := req.Prioridad
	if prioridad == "" {
		prioridad = domain.PrioridadMedia
	}
	if !prioridad.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrValidation, domain.ErrInvalidPrioridad)
	}

	now := s.now()
	n := &domain.Notificacion{
		ID:        uuid.New().String(),
		Mensaje:   mensaje,
		Fecha:     now,
		UsuarioID: req.UsuarioID,
		TareaID:   req.TareaID,
		Tipo:      tipo,
		Prioridad: prioridad,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.invalidate(ctx, n.UsuarioID)
	return n, nil
}

// List returns the newest notifications of a user together with the
// user's unread count.
func (s *Service) List(ctx context.Context, usuarioID string, leida *bool, limit int) (*ListResult, error) {
	list, err := s.repo.ListByUsuario(ctx, usuarioID, leida, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	noLeidas, err := s.CountUnread(ctx, usuarioID)
	if err != nil {
		return nil, err
	}

	return &ListResult{Notificaciones: list, NoLeidas: noLeidas}, nil
}

// Unread returns the most recent unread notifications.
func (s *Service) Unread(ctx context.Context, usuarioID string) ([]domain.Notificacion, error) {
	leida := false
	return s.repo.ListByUsuario(ctx, usuarioID, &leida, UnreadListLimit)
}

// CountUnread returns the unread count, cache-aside when a counter cache is
// configured. Concurrent misses for the same user share one query, which
// runs detached from the caller's cancellation.
func (s *Service) CountUnread(ctx context.Context, usuarioID string) (int64, error) {
	if s.counter == nil {
		return s.repo.CountUnread(ctx, usuarioID)
	}

	count, found, err := s.counter.Get(ctx, usuarioID)
	if err != nil {
		log.Printf("[notificacion] Cache error for %s: %v", usuarioID, err)
	}
	if found {
		return count, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := s.sfGroup.DoChan("noleidas:"+usuarioID, func() (any, error) {
		return s.refillCount(shared, usuarioID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int64), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// refillCount reads the count from the database and caches it unless the
// user was invalidated meanwhile.
func (s *Service) refillCount(ctx context.Context, usuarioID string) (int64, error) {
	gen, err := s.counter.Generation(ctx, usuarioID)
	if err != nil {
		log.Printf("[notificacion] Cache error for %s: %v", usuarioID, err)
		return s.repo.CountUnread(ctx, usuarioID)
	}

	count, err := s.repo.CountUnread(ctx, usuarioID)
	if err != nil {
		return 0, err
	}
	if _, err := s.counter.SetIfGeneration(ctx, usuarioID, count, gen); err != nil {
		log.Printf("[notificacion] Warning: failed to cache count for %s: %v", usuarioID, err)
	}
	return count, nil
}

// MarkRead marks a notification owned by usuarioID as read.
func (s *Service) MarkRead(ctx context.Context, usuarioID, id string) (*domain.Notificacion, error) {
	n, err := s.owned(ctx, usuarioID, id)
	if err != nil {
		return nil, err
	}
	if n.Leida {
		return n, nil
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	n.Leida = true
	s.invalidate(ctx, usuarioID)
	return n, nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, usuarioID string) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, usuarioID)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		s.invalidate(ctx, usuarioID)
	}
	return updated, nil
}

// Delete removes a notification owned by usuarioID.
func (s *Service) Delete(ctx context.Context, usuarioID, id string) error {
	n, err := s.owned(ctx, usuarioID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if !n.Leida {
		s.invalidate(ctx, usuarioID)
	}
	return nil
}

// PurgeRead removes the user's read notifications. The unread set is not
// touched.
func (s *Service) PurgeRead(ctx context.Context, usuarioID string) (int64, error) {
	return s.repo.DeleteRead(ctx, usuarioID)
}

// DeleteByTarea removes every notification about a task. Running it again
// for the same task is a no-op.
func (s *Service) DeleteByTarea(ctx context.Context, tareaID string) (int64, error) {
	if strings.TrimSpace(tareaID) == "" {
		return 0, fmt.Errorf("%w: tarea_id is required", ErrValidation)
	}

	recipients, err := s.repo.UnreadRecipientsByTarea(ctx, tareaID)
	if err != nil {
		return 0, err
	}

	deleted, err := s.repo.DeleteByTarea(ctx, tareaID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, recipients...)
	return deleted, nil
}

// owned loads a notification and checks that usuarioID is its recipient.
// A missing notification is reported before ownership.
func (s *Service) owned(ctx context.Context, usuarioID, id string) (*domain.Notificacion, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UsuarioID != usuarioID {
		return nil, ErrForbidden
	}
	return n, nil
}

func (s *Service) invalidate(ctx context.Context, usuarioIDs ...string) {
	if s.counter == nil || len(usuarioIDs) == 0 {
		return
	}
	if err := s.counter.Invalidate(ctx, usuarioIDs...); err != nil {
		log.Printf("[notificacion] Warning: failed to invalidate counters: %v", err)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
