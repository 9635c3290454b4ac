package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"taskmanager/internal/models"
	"taskmanager/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one subscribed websocket connection. Its writer goroutine
// drains send; the hub closes send when it drops the client.
type Client struct {
	Conn Conn
	send chan []byte
}

func NewClient(conn Conn) *Client {
	return &Client{Conn: conn, send: make(chan []byte, sendBuffer)}
}

// writePump closes the connection once send is closed or a write fails.
func (c *Client) writePump() {
	defer c.Conn.Close()
	for message := range c.send {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			logger.ErrorLogger.Error("Error setting write deadline", zap.Error(err))
			return
		}
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.ErrorLogger.Error("Error writing task event", zap.Error(err))
			return
		}
	}
}

// Hub fans task events out to every registered client. Only Run touches
// the client set.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast until ctx is cancelled,
// then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			go client.writePump()
		case client := <-h.unregister:
			h.drop(client)
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// subscriber is not keeping up
					logger.SecurityLogger.Warn("Dropping slow task event subscriber")
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		// unblocks a writer stuck on a dead peer
		client.Conn.Close()
	}
}

// Register reports false when the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues event for every client. It never waits on a slow
// connection and is a no-op once the hub has stopped.
func (h *Hub) Publish(event models.TaskEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding task event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}
