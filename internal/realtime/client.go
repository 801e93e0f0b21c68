package realtime

import (
	"sync"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// Client is one live bidirectional channel. Events for a single client are
// handled one at a time in arrival order by its read pump; different clients
// run fully in parallel.
type Client struct {
	connectionID string
	channelID    string
	conn         *websocket.Conn
	send         chan []byte

	mu     sync.RWMutex
	tenant *models.Tenant

	closeOnce sync.Once
}

func newClient(connectionID, channelID string, conn *websocket.Conn) *Client {
	return &Client{
		connectionID: connectionID,
		channelID:    channelID,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
	}
}

func (c *Client) ConnectionID() string { return c.connectionID }

// Tenant returns the bound tenant, nil while still in the Connected state.
func (c *Client) Tenant() *models.Tenant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tenant
}

// Joined reports whether the client has completed the join handshake.
func (c *Client) Joined() bool {
	return c.Tenant() != nil
}

func (c *Client) setTenant(tenant *models.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tenant = tenant
}

// enqueue hands a message to the write pump without blocking. Returns false
// when the client's buffer is full.
func (c *Client) enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump drains inbound frames and dispatches them to the coordinator.
// It owns the disconnect path: when the transport errors or the client
// closes, the connection is marked inactive exactly once.
func (c *Client) readPump(co *Coordinator) {
	defer func() {
		co.handleDisconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		co.HandleMessage(c, message)
	}
}

// writePump serializes all writes to the transport and keeps it alive with
// protocol-level pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
