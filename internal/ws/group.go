package ws

import "sync"

// Group is the broadcast set for one room code: every connection
// currently bound to the room, master included.
type Group struct {
	mu    sync.RWMutex
	conns map[*Conn]struct{}
}

func newGroup() *Group { return &Group{conns: map[*Conn]struct{}{}} }

// Join adds a connection to the group
func (g *Group) Join(c *Conn) {
	g.mu.Lock()
	g.conns[c] = struct{}{}
	g.mu.Unlock()
}

// Leave removes a connection from the group
func (g *Group) Leave(c *Conn) {
	g.mu.Lock()
	delete(g.conns, c)
	g.mu.Unlock()
}

// Empty reports whether no connections remain
func (g *Group) Empty() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns) == 0
}

// Broadcast sends a frame to every member, sender included
func (g *Group) Broadcast(b []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.conns {
		c.send(b)
	}
}

// BroadcastExcept sends a frame to every member but the sender
func (g *Group) BroadcastExcept(sender *Conn, b []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.conns {
		if c != sender {
			c.send(b)
		}
	}
}
