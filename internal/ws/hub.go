package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"screenroom/internal/room"
	"screenroom/pkg/auth"
	"screenroom/pkg/metrics"
)

// Hub binds websocket connections to rooms and drives the per-connection
// lifecycle: handshake, join announcements, event relay, disconnect
// cleanup. Room state lives in the registry; the hub only owns the
// broadcast groups.
type Hub struct {
	log    *slog.Logger
	reg    *room.Registry
	tokens *auth.Tokens
	bus    *Bus // nil when cross-instance fan-out is disabled

	mu     sync.RWMutex
	groups map[string]*Group // broadcast groups by room code
}

func NewHub(logger *slog.Logger, reg *room.Registry, tokens *auth.Tokens, bus *Bus) *Hub {
	return &Hub{log: logger, reg: reg, tokens: tokens, bus: bus, groups: map[string]*Group{}}
}

// Run forwards bus frames from other instances to local groups until
// ctx is cancelled. With no bus it just blocks on ctx.
func (h *Hub) Run(ctx context.Context) {
	if h.bus != nil {
		go h.bus.Subscribe(ctx, func(msg BusMessage) {
			h.mu.RLock()
			g := h.groups[msg.RoomCode]
			h.mu.RUnlock()
			if g != nil {
				g.Broadcast(msg.Payload)
			}
		})
	}
	<-ctx.Done()
}

// group returns the broadcast group for a room, creating it if needed
func (h *Hub) group(code string) *Group {
	h.mu.Lock()
	defer h.mu.Unlock()
	g := h.groups[code]
	if g == nil {
		g = newGroup()
		h.groups[code] = g
	}
	return g
}

// dropGroup forgets an empty group; a later join recreates it
func (h *Hub) dropGroup(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if g := h.groups[code]; g != nil && g.Empty() {
		delete(h.groups, code)
	}
}

// ServeWS handles a new /ws connection. The handshake carries roomCode,
// username and the session token issued by the rooms API; anything
// missing or unverifiable is refused before the upgrade, as is a stale
// room code or a full room (the HTTP join already validated those, this
// is the defense-in-depth check at the barrier).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	code, username, tok := q.Get("roomCode"), q.Get("username"), q.Get("token")
	if code == "" || username == "" {
		http.Error(w, "roomCode and username required", http.StatusBadRequest)
		return
	}
	identity, err := h.tokens.Resolve(tok)
	if err != nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	role, err := h.reg.Join(code, identity, username)
	switch {
	case errors.Is(err, room.ErrNotFound):
		http.Error(w, "room not found", http.StatusNotFound)
		return
	case errors.Is(err, room.ErrFull):
		http.Error(w, "room is full", http.StatusForbidden)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	c := newConn(conn, code, identity, username, role)
	g := h.group(code)
	g.Join(c)
	metrics.Connections.Inc()
	h.log.Debug("ws.bound", "room", code, "username", username, "role", role)

	go c.WriteLoop(ctx)

	h.fanout(ctx, code, g, encode(EvtParticipantCount, h.reg.Count(code)))
	h.fanout(ctx, code, g, encode(EvtAnnounce, username+" has joined"))

	// Inbound reader; exits when the connection closes or errors
	for {
		payload, ok := c.Read(ctx)
		if !ok {
			break
		}
		h.dispatch(ctx, c, g, payload)
	}

	h.unbind(code, c, g)
}

// dispatch routes one inbound frame. Unknown events are dropped, as are
// privileged events from the wrong role.
func (h *Hub) dispatch(ctx context.Context, c *Conn, g *Group, payload []byte) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		h.log.Debug("ws.frame.bad", "room", c.roomCode, "err", err)
		return
	}

	switch ev.Event {
	case EvtChat:
		var text string
		if err := json.Unmarshal(ev.Data, &text); err != nil {
			return
		}
		h.fanout(ctx, c.roomCode, g, encode(EvtChat, ChatMessage{Username: c.username, Text: text}))

	case EvtShareScreen:
		// Only the room's master may broadcast a signaling descriptor.
		if c.role != room.RoleMaster {
			h.log.Warn("ws.share.denied", "room", c.roomCode, "username", c.username)
			return
		}
		h.fanoutExcept(ctx, c.roomCode, g, c, encode(EvtScreenShared, ev.Data))

	case EvtStopShareScreen:
		if c.role != room.RoleMaster {
			return
		}
		h.fanoutExcept(ctx, c.roomCode, g, c, encode(EvtShareStopped, struct{}{}))

	default:
		h.log.Debug("ws.event.unknown", "event", ev.Event)
	}
}

// unbind tears down a disconnected connection: registry leave fused
// with the deletion rule, group leave, then the leave announcements.
func (h *Hub) unbind(code string, c *Conn, g *Group) {
	count, deleted := h.reg.LeaveAndReap(code, c.identity)
	g.Leave(c)
	_ = c.Close()
	metrics.Connections.Dec()

	// Remaining members still learn the new count and who left, even
	// when the leaver was the master.
	ctx := context.Background()
	h.fanout(ctx, code, g, encode(EvtParticipantCount, count))
	h.fanout(ctx, code, g, encode(EvtAnnounce, c.username+" has left"))

	if deleted {
		h.dropGroup(code)
	}
	h.log.Debug("ws.unbound", "room", code, "username", c.username, "count", count, "deleted", deleted)
}

// fanout delivers a frame to every local member and, when a bus is
// configured, to the room's members on other instances.
func (h *Hub) fanout(ctx context.Context, code string, g *Group, b []byte) {
	g.Broadcast(b)
	h.publish(ctx, code, b)
}

// fanoutExcept is fanout minus the local sender; a sender is never
// connected to another instance, so the bus path needs no exclusion.
func (h *Hub) fanoutExcept(ctx context.Context, code string, g *Group, sender *Conn, b []byte) {
	g.BroadcastExcept(sender, b)
	h.publish(ctx, code, b)
}

func (h *Hub) publish(ctx context.Context, code string, b []byte) {
	var ev Event
	_ = json.Unmarshal(b, &ev)
	metrics.EventsBroadcast.WithLabelValues(ev.Event).Inc()
	if h.bus != nil {
		if err := h.bus.Publish(ctx, code, b); err != nil {
			h.log.Error("bus.publish", "room", code, "err", err)
		}
	}
}
