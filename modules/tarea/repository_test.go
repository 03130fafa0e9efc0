package tarea

import (
	"context"
	"testing"
	"time"

	domain "github.com/jegu600/Gestion360/domain/tarea"
	"github.com/jegu600/Gestion360/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.OpenMemory(&domain.Tarea{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return NewRepository(db)
}

func newTarea(id, creador, responsable string, creada time.Time) *domain.Tarea {
	return &domain.Tarea{
		ID:            id,
		Titulo:        "Tarea " + id,
		Descripcion:   "Descripcion",
		Estado:        domain.EstadoPendiente,
		FechaCreacion: creada,
		FechaLimite:   creada.Add(72 * time.Hour),
		Responsable:   responsable,
		CreadoPor:     creador,
		Prioridad:     domain.PrioridadMedia,
	}
}

func TestRepository_ListFilters(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newTarea("t1", "a", "b", base)))
	require.NoError(t, repo.Create(ctx, newTarea("t2", "b", "a", base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newTarea("t3", "c", "c", base.Add(2*time.Hour))))
	require.NoError(t, repo.Update(ctx, "t1", map[string]any{"estado": domain.EstadoCompletada}))

	all, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t3", all[0].ID)

	mine, err := repo.List(ctx, ListFilter{Participant: "a"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "t2", mine[0].ID)
	assert.Equal(t, "t1", mine[1].ID)

	done, err := repo.List(ctx, ListFilter{Participant: "a", Estado: domain.EstadoCompletada})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "t1", done[0].ID)
}

func TestRepository_UpdateOnlyGivenColumns(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTarea("t1", "a", "b", time.Now())))

	require.NoError(t, repo.Update(ctx, "t1", map[string]any{"titulo": "Nuevo titulo"}))

	got, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Nuevo titulo", got.Titulo)
	assert.Equal(t, "Descripcion", got.Descripcion)
	assert.Equal(t, "b", got.Responsable)
}

func TestRepository_MissingRows(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrTareaNotFound)
	assert.ErrorIs(t, repo.Update(ctx, "missing", map[string]any{"titulo": "x"}), ErrTareaNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrTareaNotFound)
}
