package notificacion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "github.com/jegu600/Gestion360/domain/notificacion"
	"github.com/jegu600/Gestion360/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCounter is an in-memory CounterCache.
type fakeCounter struct {
	mu          sync.Mutex
	values      map[string]int64
	generations map[string]int64
	invalidated []string
	getErr      error
	// beforeSet runs once, between the database read and the cache write.
	beforeSet func()
	// onGeneration runs once, before the database read.
	onGeneration func()
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{
		values:      make(map[string]int64),
		generations: make(map[string]int64),
	}
}

func (f *fakeCounter) Get(_ context.Context, id string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return 0, false, f.getErr
	}
	v, ok := f.values[id]
	return v, ok, nil
}

func (f *fakeCounter) Generation(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	hook := f.onGeneration
	f.onGeneration = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generations[id], nil
}

func (f *fakeCounter) SetIfGeneration(_ context.Context, id string, count, generation int64) (bool, error) {
	f.mu.Lock()
	hook := f.beforeSet
	f.beforeSet = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generations[id] != generation {
		return false, nil
	}
	f.values[id] = count
	return true, nil
}

func (f *fakeCounter) Invalidate(_ context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.values, id)
		f.generations[id]++
		f.invalidated = append(f.invalidated, id)
	}
	return nil
}

func (f *fakeCounter) cached(id string) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[id]
	return v, ok
}

func setupTestService(t *testing.T, counter CounterCache) *Service {
	t.Helper()

	db, err := database.OpenMemory(&domain.Notificacion{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	svc := NewService(NewRepository(db), counter)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var tick int
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return svc
}

func mustCreate(t *testing.T, svc *Service, usuarioID, tareaID, mensaje string) *domain.Notificacion {
	t.Helper()
	n, err := svc.Create(context.Background(), domain.Request{
		Mensaje:   mensaje,
		UsuarioID: usuarioID,
		TareaID:   tareaID,
		Tipo:      domain.TipoTareaAsignada,
	})
	require.NoError(t, err)
	return n
}

func TestService_CreateDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, nil)

	n, err := svc.Create(ctx, domain.Request{Mensaje: "  Hola  ", UsuarioID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Hola", n.Mensaje)
	assert.Equal(t, domain.TipoSistema, n.Tipo)
	assert.Equal(t, domain.PrioridadMedia, n.Prioridad)
	assert.False(t, n.Leida)
	assert.NotEmpty(t, n.ID)

	tests := []struct {
		name string
		req  domain.Request
	}{
		{"empty mensaje", domain.Request{Mensaje: " ", UsuarioID: "u1"}},
		{"missing usuario", domain.Request{Mensaje: "x"}},
		{"unknown tipo", domain.Request{Mensaje: "x", UsuarioID: "u1", Tipo: "broadcast"}},
		{"unknown prioridad", domain.Request{Mensaje: "x", UsuarioID: "u1", Prioridad: "critica"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestService_ListNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, nil)

	for _, m := range []string{"uno", "dos", "tres"} {
		mustCreate(t, svc, "u1", "", m)
	}
	mustCreate(t, svc, "u2", "", "ajena")

	result, err := svc.List(ctx, "u1", nil, 0)
	require.NoError(t, err)
	require.Len(t, result.Notificaciones, 3)
	assert.Equal(t, "tres", result.Notificaciones[0].Mensaje)
	assert.Equal(t, "uno", result.Notificaciones[2].Mensaje)
	assert.Equal(t, int64(3), result.NoLeidas)

	result, err = svc.List(ctx, "u1", nil, 2)
	require.NoError(t, err)
	assert.Len(t, result.Notificaciones, 2)
}

func TestService_ListFilterByLeida(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, nil)

	first := mustCreate(t, svc, "u1", "", "uno")
	mustCreate(t, svc, "u1", "", "dos")
	_, err := svc.MarkRead(ctx, "u1", first.ID)
	require.NoError(t, err)

	leida := true
	result, err := svc.List(ctx, "u1", &leida, 20)
	require.NoError(t, err)
	require.Len(t, result.Notificaciones, 1)
	assert.Equal(t, first.ID, result.Notificaciones[0].ID)
	assert.Equal(t, int64(1), result.NoLeidas)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, clampLimit(0))
	assert.Equal(t, DefaultListLimit, clampLimit(-5))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, MaxListLimit, clampLimit(500))
}

func TestService_UnreadCapsAtTen(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, nil)

	for i := 0; i < 12; i++ {
		mustCreate(t, svc, "u1", "", "aviso")
	}

	list, err := svc.Unread(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, UnreadListLimit)
}

func TestService_MarkReadOwnership(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, nil)

	n := mustCreate(t, svc, "u1", "", "uno")

	_, err := svc.MarkRead(ctx, "u2", n.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.MarkRead(ctx, "u2", "missing")
	assert.ErrorIs(t, err, ErrNotificacionNotFound)

	marked, err := svc.MarkRead(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.True(t, marked.Leida)

	count, err := svc.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestService_MarkAllAndPurge(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, nil)

	mustCreate(t, svc, "u1", "", "uno")
	mustCreate(t, svc, "u1", "", "dos")
	mustCreate(t, svc, "u2", "", "ajena")

	updated, err := svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	updated, err = svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	mustCreate(t, svc, "u1", "", "tres")

	deleted, err := svc.PurgeRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	result, err := svc.List(ctx, "u1", nil, 0)
	require.NoError(t, err)
	require.Len(t, result.Notificaciones, 1)
	assert.Equal(t, "tres", result.Notificaciones[0].Mensaje)

	other, err := svc.CountUnread(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestService_DeleteOwnership(t *testing.T) {
	ctx := context.Background()
	svc := setupTestService(t, nil)

	n := mustCreate(t, svc, "u1", "", "uno")

	assert.ErrorIs(t, svc.Delete(ctx, "u2", n.ID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, "u1", "missing"), ErrNotificacionNotFound)
	require.NoError(t, svc.Delete(ctx, "u1", n.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", n.ID), ErrNotificacionNotFound)
}

func TestService_DeleteByTarea(t *testing.T) {
	ctx := context.Background()
	counter := newFakeCounter()
	svc := setupTestService(t, counter)

	gone1 := mustCreate(t, svc, "u1", "t1", "uno")
	gone2 := mustCreate(t, svc, "u2", "t1", "dos")
	keep := mustCreate(t, svc, "u1", "t2", "otra tarea")

	// warm the cache
	_, err := svc.CountUnread(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.CountUnread(ctx, "u2")
	require.NoError(t, err)
	counter.invalidated = nil

	deleted, err := svc.DeleteByTarea(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.ElementsMatch(t, []string{"u1", "u2"}, counter.invalidated)

	// cascaded notifications no longer resolve
	_, err = svc.MarkRead(ctx, "u1", gone1.ID)
	assert.ErrorIs(t, err, ErrNotificacionNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", gone2.ID), ErrNotificacionNotFound)

	again, err := svc.DeleteByTarea(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), again)

	result, err := svc.List(ctx, "u1", nil, 0)
	require.NoError(t, err)
	require.Len(t, result.Notificaciones, 1)
	assert.Equal(t, keep.ID, result.Notificaciones[0].ID)
	assert.Equal(t, int64(1), result.NoLeidas)

	_, err = svc.DeleteByTarea(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_CountUnreadCacheAside(t *testing.T) {
	ctx := context.Background()
	counter := newFakeCounter()
	svc := setupTestService(t, counter)

	mustCreate(t, svc, "u1", "", "uno")

	count, err := svc.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	cached, ok := counter.cached("u1")
	assert.True(t, ok)
	assert.Equal(t, int64(1), cached)

	// a cached value is served as is
	counter.mu.Lock()
	counter.values["u1"] = 42
	counter.mu.Unlock()
	count, err = svc.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)

	// creating a notification invalidates the cached value
	mustCreate(t, svc, "u1", "", "dos")
	count, err = svc.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestService_CountUnreadKeepsInvalidationDuringRefill(t *testing.T) {
	ctx := context.Background()
	counter := newFakeCounter()
	svc := setupTestService(t, counter)

	mustCreate(t, svc, "u1", "", "uno")

	// a second notification lands after the count was read from the
	// database but before the count is cached
	var createErr error
	counter.beforeSet = func() {
		_, createErr = svc.Create(ctx, domain.Request{Mensaje: "dos", UsuarioID: "u1"})
	}

	count, err := svc.CountUnread(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, createErr)
	assert.Equal(t, int64(1), count)

	_, ok := counter.cached("u1")
	assert.False(t, ok, "a count read before the invalidation must not be cached")

	count, err = svc.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestService_CountUnreadSurvivesCallerCancel(t *testing.T) {
	counter := newFakeCounter()
	svc := setupTestService(t, counter)

	mustCreate(t, svc, "u1", "", "uno")

	// the first caller goes away while the shared refill is running
	ctx, cancel := context.WithCancel(context.Background())
	counter.onGeneration = cancel

	if _, err := svc.CountUnread(ctx, "u1"); err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}

	assert.Eventually(t, func() bool {
		v, ok := counter.cached("u1")
		return ok && v == 1
	}, time.Second, 10*time.Millisecond)
}

func TestService_CountUnreadFallsBackOnCacheError(t *testing.T) {
	ctx := context.Background()
	counter := newFakeCounter()
	counter.getErr = errors.New("connection refused")
	svc := setupTestService(t, counter)

	mustCreate(t, svc, "u1", "", "uno")

	count, err := svc.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
