package api

import (
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/jegu600/Gestion360/domain/usuario"
	"github.com/jegu600/Gestion360/modules/push"
)

// HandleWebSocket handles WebSocket connections at /ws. The connection only
// receives pushes; incoming frames are read to detect the close.
func (h *Handlers) HandleWebSocket(c *websocket.Conn) {
	claims, ok := c.Locals(UserContextKey).(*usuario.Claims)
	if !ok || claims == nil {
		_ = c.Close()
		return
	}

	client := &push.Client{
		ID:     uuid.New().String(),
		UserID: claims.UserID,
		Conn:   c,
	}

	welcome := push.Message{
		Type:    push.TypeConnected,
		Payload: map[string]string{"client_id": client.ID, "uid": claims.UserID},
	}
	if err := c.WriteJSON(welcome); err != nil {
		log.Printf("[api] Failed to send welcome: %v", err)
		return
	}

	if !h.hub.Register(client) {
		_ = c.Close()
		return
	}
	defer func() {
		h.hub.Unregister(client)
		log.Printf("[api] WebSocket client disconnected: %s (user %s)", client.ID, client.UserID)
	}()

	log.Printf("[api] WebSocket client connected: %s (user %s)", client.ID, client.UserID)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Client %s closed connection", client.ID)
			} else {
				log.Printf("[api] Read error from %s: %v", client.ID, err)
			}
			return
		}
	}
}
