package websocket

import (
	"net/http"
	"sync"

	"debatehub/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GamificationClient is one subscriber to gamification updates.
type GamificationClient struct {
	conn     *websocket.Conn
	username string
	writeMu  sync.Mutex
}

func (gc *GamificationClient) safeWriteJSON(v interface{}) error {
	gc.writeMu.Lock()
	defer gc.writeMu.Unlock()
	return gc.conn.WriteJSON(v)
}

// Hub fans gamification events out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*GamificationClient]bool
	log     *logrus.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{clients: make(map[*GamificationClient]bool), log: log}
}

func (h *Hub) register(client *GamificationClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	h.log.WithField("clients", len(h.clients)).Debug("gamification client registered")
}

func (h *Hub) unregister(client *GamificationClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client] {
		delete(h.clients, client)
		client.conn.Close()
	}
	h.log.WithField("clients", len(h.clients)).Debug("gamification client unregistered")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends the event to all connected clients. A client whose
// write fails is dropped.
func (h *Hub) Broadcast(event models.GamificationEvent) {
	h.mu.RLock()
	clients := make([]*GamificationClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.safeWriteJSON(event); err != nil {
			h.log.WithError(err).Warn("failed to broadcast gamification event")
			h.unregister(client)
		}
	}
}

// Handler upgrades the request and keeps the subscription alive until the
// peer goes away. The username query parameter identifies the subscriber.
func (h *Hub) Handler(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &GamificationClient{conn: conn, username: username}
	h.register(client)
	defer h.unregister(client)

	err = client.safeWriteJSON(gin.H{
		"type":     "connected",
		"message":  "Connected to gamification updates",
		"username": username,
	})
	if err != nil {
		h.log.WithError(err).Warn("failed to send welcome message")
		return
	}

	for {
		messageType, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Debug("gamification websocket closed")
			}
			return
		}
		if messageType == websocket.PingMessage {
			if err := conn.WriteMessage(websocket.PongMessage, nil); err != nil {
				return
			}
		}
	}
}
