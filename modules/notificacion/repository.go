package notificacion

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/jegu600/Gestion360/domain/notificacion"
	"gorm.io/gorm"
)

// Repository provides access to notification storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new notification.
func (r *Repository) Create(ctx context.Context, n *domain.Notificacion) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notificacion: %w", err)
	}
	return nil
}

// FindByID retrieves a notification by its ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Notificacion, error) {
	var n domain.Notificacion
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificacionNotFound
		}
		return nil, fmt.Errorf("failed to find notificacion: %w", err)
	}
	return &n, nil
}

// ListByUsuario returns the newest notifications of a user, optionally
// filtered by read state.
func (r *Repository) ListByUsuario(ctx context.Context, usuarioID string, leida *bool, limit int) ([]domain.Notificacion, error) {
	query := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID)
	if leida != nil {
		query = query.Where("leida = ?", *leida)
	}

	var list []domain.Notificacion
	if err := query.Order("fecha DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list notificaciones: %w", err)
	}
	return list, nil
}

// CountUnread counts the unread notifications of a user.
func (r *Repository) CountUnread(ctx context.Context, usuarioID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Notificacion{}).
		Where("usuario_id = ? AND leida = ?", usuarioID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notificaciones: %w", err)
	}
	return count, nil
}

// MarkRead flips a single notification to read.
func (r *Repository) MarkRead(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&domain.Notificacion{}).Where("id = ?", id).Update("leida", true)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to mark notificacion: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotificacionNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification of a user and returns how
// many changed.
func (r *Repository) MarkAllRead(ctx context.Context, usuarioID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Notificacion{}).
		Where("usuario_id = ? AND leida = ?", usuarioID, false).
		Update("leida", true)
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to mark notificaciones: %w", err)
	}
	return result.RowsAffected, nil
}

// Delete removes a notification by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Notificacion{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete notificacion: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotificacionNotFound
	}
	return nil
}

// DeleteRead removes the read notifications of a user.
func (r *Repository) DeleteRead(ctx context.Context, usuarioID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("usuario_id = ? AND leida = ?", usuarioID, true).
		Delete(&domain.Notificacion{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to delete notificaciones: %w", err)
	}
	return result.RowsAffected, nil
}

// UnreadRecipientsByTarea lists the users holding unread notifications
// about a task.
func (r *Repository) UnreadRecipientsByTarea(ctx context.Context, tareaID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Notificacion{}).
		Where("tarea_id = ? AND leida = ?", tareaID, false).
		Distinct().
		Pluck("usuario_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	return ids, nil
}

// DeleteByTarea removes every notification referencing a task.
func (r *Repository) DeleteByTarea(ctx context.Context, tareaID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("tarea_id = ?", tareaID).Delete(&domain.Notificacion{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to delete notificaciones for tarea: %w", err)
	}
	return result.RowsAffected, nil
}
