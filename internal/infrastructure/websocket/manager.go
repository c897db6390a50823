package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"laporwarga/pkg/logger"
)

// Client represents one complaint-feed subscriber connection.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	// stop cancels the Firestore listener feeding this client.
	stop func()
}

func (c *Client) SetStop(stop func()) {
	c.stop = stop
}

// Manager tracks active feed connections.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ID] = client
				m.mutex.Unlock()
				logger.Debug("Feed client registered: %s (user %s)", client.ID, client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if _, ok := m.clients[client.ID]; ok {
					delete(m.clients, client.ID)
					close(client.Send)
					if client.stop != nil {
						client.stop()
					}
				}
				m.mutex.Unlock()
				logger.Debug("Feed client unregistered: %s", client.ID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// Push queues a snapshot for the client, dropping the connection if its
// buffer is full.
func (m *Manager) Push(clientID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[clientID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- message:
	default:
		m.Unregister <- client
	}
}

// ReadPump drains control frames until the peer goes away.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Feed connection error: %v", err)
			}
			break
		}
	}
}

// WritePump sends queued snapshots to the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
