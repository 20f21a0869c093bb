package realtime

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one websocket participant in a room.
type Client struct {
	server   *RoomServer
	conn     *websocket.Conn
	room     string
	identity string

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func NewClient(server *RoomServer, conn *websocket.Conn, room, identity string) *Client {
	return &Client{
		server:   server,
		conn:     conn,
		room:     room,
		identity: identity,
		send:     make(chan []byte, 256),
	}
}

// Identity returns the participant identity carried in the access token.
func (c *Client) Identity() string { return c.identity }

// Send queues a frame for delivery. Frames are dropped when the client's
// buffer is full rather than blocking the room, and silently once the
// client has closed. The mutex keeps the queue open for the duration of
// the send so a concurrent Close cannot close the channel under it.
func (c *Client) Send(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		log.Printf("⚠️ Dropping frame to %s in room %s: buffer full", c.identity, c.room)
	}
}

// Close tears down the connection. Safe to call more than once and
// concurrently with Send.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	c.conn.Close()
}

// ReadPump reads frames from the socket and hands them to the room until
// the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.server.Leave(context.Background(), c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ Unexpected close from %s in room %s: %v", c.identity, c.room, err)
			}
			return
		}
		c.server.deliver(c, frame)
	}
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
