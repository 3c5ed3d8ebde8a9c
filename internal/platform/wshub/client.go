package wshub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// client is a single WebSocket subscriber
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64
}

// trySend queues msg without blocking. It reports false when the buffer is
// full or the client is closing.
func (c *client) trySend(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// close tells the writer to say goodbye and release the connection. The
// send channel is never closed so that concurrent trySend calls stay safe.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump consumes inbound frames, answering each one with a pong. It
// returns when the connection fails or the client is closed.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()

	readWait := 2 * c.hub.config.PingInterval
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(readWait))

		msg, err := pongMessage(c.hub.now())
		if err != nil {
			continue
		}
		c.trySend(msg)
	}
}

// writePump is the only goroutine that writes to the connection, and the
// one that closes it.
func (c *client) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			deadline := time.Now().Add(c.hub.config.WriteTimeout)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
			return

		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.logger.Debug("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
