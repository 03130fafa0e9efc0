package tarea

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/jegu600/Gestion360/domain/tarea"
	"gorm.io/gorm"
)

// ListFilter narrows a task listing. An empty Participant lists every task.
type ListFilter struct {
	Participant string
	Estado      domain.Estado
}

// Repository provides access to task storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new task.
func (r *Repository) Create(ctx context.Context, t *domain.Tarea) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create tarea: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Tarea, error) {
	var t domain.Tarea
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTareaNotFound
		}
		return nil, fmt.Errorf("failed to find tarea: %w", err)
	}
	return &t, nil
}

// List returns tasks matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]domain.Tarea, error) {
	query := r.db.WithContext(ctx).Model(&domain.Tarea{})
	if filter.Participant != "" {
		query = query.Where("responsable = ? OR creado_por = ?", filter.Participant, filter.Participant)
	}
	if filter.Estado != "" {
		query = query.Where("estado = ?", filter.Estado)
	}

	var tareas []domain.Tarea
	if err := query.Order("fecha_creacion DESC").Find(&tareas).Error; err != nil {
		return nil, fmt.Errorf("failed to list tareas: %w", err)
	}
	return tareas, nil
}

// Update writes only the given columns.
func (r *Repository) Update(ctx context.Context, id string, columns map[string]any) error {
	result := r.db.WithContext(ctx).Model(&domain.Tarea{}).Where("id = ?", id).Updates(columns)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update tarea: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTareaNotFound
	}
	return nil
}

// Delete removes a task by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Tarea{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete tarea: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTareaNotFound
	}
	return nil
}
