package push

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// clientSendBuffer is how many pushes may wait for a client's writer before
// the client is dropped as too slow.
const clientSendBuffer = 16

// Client represents a connected WebSocket client.
type Client struct {
	ID     string
	UserID string
	Conn   Conn

	send chan []byte
}

// Message is the envelope sent to clients.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type delivery struct {
	userIDs []string
	message Message
}

// Hub manages WebSocket connections and routes messages to users.
type Hub struct {
	clients    map[string]*Client         // clientID -> Client
	users      map[string]map[string]bool // userID -> set of clientIDs
	register   chan *Client
	unregister chan *Client
	deliveries chan delivery
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		users:      make(map[string]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[hub] Shutting down...")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case d := <-h.deliveries:
			h.handleDelivery(d)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.send)
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.users = make(map[string]map[string]bool)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		return
	}
	client.send = make(chan []byte, clientSendBuffer)
	go h.writePump(client)

	h.clients[client.ID] = client
	if h.users[client.UserID] == nil {
		h.users[client.UserID] = make(map[string]bool)
	}
	h.users[client.UserID][client.ID] = true
	log.Printf("[hub] Client %s (user %s) registered", client.ID, client.UserID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.remove(client) {
		log.Printf("[hub] Client %s (user %s) unregistered", client.ID, client.UserID)
	}
}

// remove forgets a client and stops its writer. Callers hold h.mu.
func (h *Hub) remove(client *Client) bool {
	if _, ok := h.clients[client.ID]; !ok {
		return false
	}
	delete(h.clients, client.ID)
	if set := h.users[client.UserID]; set != nil {
		delete(set, client.ID)
		if len(set) == 0 {
			delete(h.users, client.UserID)
		}
	}
	close(client.send)
	return true
}

func (h *Hub) handleDelivery(d delivery) {
	data, err := json.Marshal(d.message)
	if err != nil {
		log.Printf("[hub] Failed to marshal %s message: %v", d.message.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userID := range d.userIDs {
		for clientID := range h.users[userID] {
			client, ok := h.clients[clientID]
			if !ok {
				continue
			}
			select {
			case client.send <- data:
			default:
				log.Printf("[hub] Client %s is not keeping up, disconnecting", client.ID)
				h.remove(client)
				_ = client.Conn.Close()
			}
		}
	}
}

// writePump writes queued pushes to one client until its queue is closed.
func (h *Hub) writePump(client *Client) {
	for data := range client.send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[hub] Failed to send to client %s: %v", client.ID, err)
		}
	}
}

// Register adds a client to the hub. It returns false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUsers queues a message for every connection of the given users.
// Messages queued after the hub stopped are dropped.
func (h *Hub) SendToUsers(userIDs []string, msgType string, payload any) {
	if len(userIDs) == 0 {
		return
	}
	select {
	case h.deliveries <- delivery{userIDs: userIDs, message: Message{Type: msgType, Payload: payload}}:
	case <-h.done:
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserCount returns the number of users with at least one connection.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users)
}
