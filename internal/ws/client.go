package ws

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// MessageFunc handles one inbound text frame from c.
type MessageFunc func(ctx context.Context, c *Client, body string) error

type Client struct {
	UserID uuid.UUID
	Name   string

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	limiter   *UserLimiter
	onMessage MessageFunc
}

// NewClient binds a socket to userID. limiter is shared by every socket of
// the process so a user cannot gain throughput by opening more connections.
func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, name string, limiter *UserLimiter, onMessage MessageFunc) *Client {
	return &Client{
		UserID:    userID,
		Name:      name,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		limiter:   limiter,
		onMessage: onMessage,
	}
}

// ReadPump reads frames until the connection fails, then unregisters.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if c.limiter != nil && !c.limiter.Allow(c.UserID) {
			c.Send(errorEvent("slow down"))
			continue
		}
		if c.onMessage == nil {
			continue
		}
		if err := c.onMessage(ctx, c, string(data)); err != nil {
			c.Send(errorEvent(err.Error()))
		}
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send queues a message for this client only. It never blocks.
func (c *Client) Send(message []byte) {
	defer func() {
		// send is closed once the hub drops the client
		_ = recover()
	}()
	select {
	case c.send <- message:
	default:
	}
}
