package ws

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"screenroom/internal/room"
)

// Conn wraps one websocket bound to a room: the handshake identity,
// the role the registry assigned, and a buffered outbound queue.
type Conn struct {
	ws       *websocket.Conn
	out      chan []byte
	roomCode string
	identity string
	username string
	role     room.Role
}

// accept upgrades HTTP to websocket (allow all origins)
func accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

func newConn(ws *websocket.Conn, roomCode, identity, username string, role room.Role) *Conn {
	return &Conn{
		ws: ws, roomCode: roomCode, identity: identity,
		username: username, role: role,
		out: make(chan []byte, 256),
	}
}

// Read blocks until it receives a text/binary message
// Returns false if connection is closed
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// WriteLoop sends outbound messages + periodic pings
// Exits when ctx is cancelled
func (c *Conn) WriteLoop(ctx context.Context) {
	t := time.NewTicker(20 * time.Second)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			_ = c.ws.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = c.ws.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// send queues a frame without blocking; a member whose buffer is full
// misses the frame (best-effort delivery, no replay).
func (c *Conn) send(b []byte) {
	select {
	case c.out <- b:
	default:
	}
}

// Close closes the WS connection normally
func (c *Conn) Close() error { return c.ws.Close(websocket.StatusNormalClosure, "bye") }
