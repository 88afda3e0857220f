// Package notify pushes stock changes and low-stock alerts to connected
// terminals over WebSocket. The engine knows nothing about it; the API layer
// publishes after commits.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tillpoint/internal/models"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // terminals connect from the local network
	},
}

// Message is the envelope pushed to clients
type Message struct {
	Type        string                   `json:"type"` // "stock" or "low_stock"
	Ingredients []models.IngredientStock `json:"ingredients,omitempty"`
	Alerts      []models.IngredientAlert `json:"alerts,omitempty"`
}

// Hub fans messages out to every connected client
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

// BroadcastStock pushes updated ingredient snapshots to all clients
func (h *Hub) BroadcastStock(snapshots []models.IngredientStock) {
	h.broadcast(Message{Type: "stock", Ingredients: snapshots})
}

// BroadcastAlerts pushes low-stock alerts to all clients
func (h *Hub) BroadcastAlerts(alerts []models.IngredientAlert) {
	if len(alerts) == 0 {
		return
	}
	h.broadcast(Message{Type: "low_stock", Alerts: alerts})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("notify: failed to encode message: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow client; drop it rather than block the caller.
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// HandleWS upgrades the connection and starts the client pumps
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("notify: failed to upgrade connection: %v", err)
		return
	}

	cl := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.mu.Lock()
	h.clients[cl] = true
	h.mu.Unlock()

	go cl.writePump()
	go cl.readPump()
}

// Close disconnects every client
func (h *Hub) Close(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// client maintains one WebSocket connection
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump drains client messages; the feed is one-way, so everything read
// is discarded except control frames
func (c *client) readPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("notify: websocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps hub messages to the WebSocket connection
func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}
