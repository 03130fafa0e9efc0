package push

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jegu600/Gestion360/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records the messages written to it.
type fakeConn struct {
	mu       sync.Mutex
	messages []Message
	closed   bool
	writeErr error
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	c.messages = append(c.messages, msg)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.messages))
	for _, m := range c.messages {
		out = append(out, m.Type)
	}
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// stuckConn blocks every write until it is closed.
type stuckConn struct {
	release chan struct{}
	once    sync.Once
}

func newStuckConn() *stuckConn {
	return &stuckConn{release: make(chan struct{})}
}

func (c *stuckConn) WriteMessage(int, []byte) error {
	<-c.release
	return errors.New("connection closed")
}

func (c *stuckConn) Close() error {
	c.once.Do(func() { close(c.release) })
	return nil
}

func (c *stuckConn) isClosed() bool {
	select {
	case <-c.release:
		return true
	default:
		return false
	}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		hub.Wait()
	})
	return hub, cancel
}

func TestHub_SendToUsersRoutesByUser(t *testing.T) {
	hub, _ := startHub(t)

	aliceTab1, aliceTab2, bob := &fakeConn{}, &fakeConn{}, &fakeConn{}
	require.True(t, hub.Register(&Client{ID: "c1", UserID: "alice", Conn: aliceTab1}))
	require.True(t, hub.Register(&Client{ID: "c2", UserID: "alice", Conn: aliceTab2}))
	require.True(t, hub.Register(&Client{ID: "c3", UserID: "bob", Conn: bob}))

	hub.SendToUsers([]string{"alice"}, TypeNotificacion, map[string]string{"mensaje": "hola"})

	assert.Eventually(t, func() bool {
		return len(aliceTab1.types()) == 1 && len(aliceTab2.types()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, bob.types())
	assert.Equal(t, 3, hub.ClientCount())
	assert.Equal(t, 2, hub.UserCount())
}

func TestHub_Unregister(t *testing.T) {
	hub, _ := startHub(t)

	conn := &fakeConn{}
	client := &Client{ID: "c1", UserID: "alice", Conn: conn}
	require.True(t, hub.Register(client))
	hub.Unregister(client)

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.UserCount())
}

func TestHub_WriteErrorDoesNotStopDelivery(t *testing.T) {
	hub, _ := startHub(t)

	broken := &fakeConn{writeErr: errors.New("broken pipe")}
	healthy := &fakeConn{}
	require.True(t, hub.Register(&Client{ID: "c1", UserID: "alice", Conn: broken}))
	require.True(t, hub.Register(&Client{ID: "c2", UserID: "alice", Conn: healthy}))

	hub.SendToUsers([]string{"alice"}, TypeTareaCreada, nil)
	assert.Eventually(t, func() bool { return len(healthy.types()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestHub_SlowClientDoesNotStallOthers(t *testing.T) {
	hub, _ := startHub(t)

	stuck := newStuckConn()
	fast := &fakeConn{}
	require.True(t, hub.Register(&Client{ID: "c1", UserID: "alice", Conn: stuck}))
	require.True(t, hub.Register(&Client{ID: "c2", UserID: "bob", Conn: fast}))

	for i := 0; i < clientSendBuffer+4; i++ {
		hub.SendToUsers([]string{"alice"}, TypeNotificacion, nil)
	}
	hub.SendToUsers([]string{"bob"}, TypeTareaCreada, nil)

	assert.Eventually(t, func() bool { return len(fast.types()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, stuck.isClosed, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.UserCount())
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	conn := &fakeConn{}
	require.True(t, hub.Register(&Client{ID: "c1", UserID: "alice", Conn: conn}))

	cancel()
	hub.Wait()

	assert.True(t, conn.isClosed())
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.Register(&Client{ID: "c2", UserID: "bob", Conn: &fakeConn{}}))
	hub.SendToUsers([]string{"alice"}, TypeNotificacion, nil)
}

func TestPushModule_TaskEventsReachParticipants(t *testing.T) {
	m := NewModule()
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	creator, previous, assignee, stranger := &fakeConn{}, &fakeConn{}, &fakeConn{}, &fakeConn{}
	require.True(t, m.GetHub().Register(&Client{ID: "c1", UserID: "alice", Conn: creator}))
	require.True(t, m.GetHub().Register(&Client{ID: "c2", UserID: "bob", Conn: previous}))
	require.True(t, m.GetHub().Register(&Client{ID: "c3", UserID: "carol", Conn: assignee}))
	require.True(t, m.GetHub().Register(&Client{ID: "c4", UserID: "dave", Conn: stranger}))

	err := m.handleTareaActualizada(context.Background(), events.TareaActualizadaEvent{
		TareaID:             "t1",
		CreadoPor:           "alice",
		Responsable:         "carol",
		ResponsableAnterior: "bob",
		ActorID:             "alice",
	}, nil)
	require.NoError(t, err)

	err = m.handleNotificacionCreada(context.Background(), events.NotificacionCreadaEvent{
		NotificacionID: "n1",
		UsuarioID:      "carol",
	}, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(assignee.types()) == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{TypeTareaActualizada, TypeNotificacion}, assignee.types())
	assert.Eventually(t, func() bool { return len(creator.types()) == 1 && len(previous.types()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Empty(t, stranger.types())

	health := m.Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Equal(t, 4, health.Details["connected_clients"])
}

func TestRecipients(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{"distinct", []string{"a", "b"}, []string{"a", "b"}},
		{"self assigned", []string{"a", "a"}, []string{"a"}},
		{"empty previous", []string{"a", "b", ""}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recipients(tt.ids...)
			assert.Equal(t, tt.want, got)
		})
	}
}
