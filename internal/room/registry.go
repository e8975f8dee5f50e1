package room

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"screenroom/pkg/metrics"
)

// Registry owns every live Room. All mutation goes through it; the
// single mutex is the serialization point for concurrent joins/leaves
// on a room, and every critical section is short (no I/O under lock).
type Registry struct {
	log *slog.Logger

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{log: log, rooms: map[string]*Room{}}
}

// Create allocates a fresh room owned by the given session identity and
// returns its code. Codes are uuids; a collision among live rooms is
// practically impossible but retried anyway.
func (r *Registry) Create(master string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		code := uuid.NewString()
		if _, taken := r.rooms[code]; taken {
			continue
		}
		r.rooms[code] = &Room{Code: code, Master: master}
		metrics.RoomsCreated.Inc()
		metrics.LiveRooms.Inc()
		r.log.Info("room.created", "code", code)
		return code
	}
}

// Join adds the identity to the room as a participant, or recognizes it
// as the master. The master never occupies a participant slot, and
// joining twice with the same identity refreshes the username instead
// of appending, so a reconnect is idempotent.
func (r *Registry) Join(code, id, username string) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return "", ErrNotFound
	}
	if id == rm.Master {
		return RoleMaster, nil
	}
	for i := range rm.members {
		if rm.members[i].ID == id {
			rm.members[i].Username = username
			return RoleParticipant, nil
		}
	}
	if len(rm.members) >= Capacity {
		return "", ErrFull
	}
	rm.members = append(rm.members, Member{ID: id, Username: username})
	return RoleParticipant, nil
}

// Leave removes the identity's participant entry if present and returns
// the remaining participant count. Unknown rooms and identities are
// no-ops (count 0 for an unknown room).
func (r *Registry) Leave(code, id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(code, id)
}

// LeaveAndReap is Leave fused with the deletion rule: the room is
// deleted iff it has no participants left and the leaver is its master.
// One critical section, so two simultaneous leaves can neither corrupt
// the count nor double-delete.
func (r *Registry) LeaveAndReap(code, id string) (count int, deleted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count = r.leaveLocked(code, id)
	rm, ok := r.rooms[code]
	if !ok {
		return count, false
	}
	if len(rm.members) == 0 && id == rm.Master {
		delete(r.rooms, code)
		metrics.RoomsDeleted.Inc()
		metrics.LiveRooms.Dec()
		r.log.Info("room.deleted", "code", code)
		return 0, true
	}
	return count, false
}

func (r *Registry) leaveLocked(code, id string) int {
	rm, ok := r.rooms[code]
	if !ok {
		return 0
	}
	for i := range rm.members {
		if rm.members[i].ID == id {
			rm.members = append(rm.members[:i], rm.members[i+1:]...)
			break
		}
	}
	return len(rm.members)
}

// Count returns the current participant count, 0 for unknown rooms.
func (r *Registry) Count(code string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok := r.rooms[code]; ok {
		return len(rm.members)
	}
	return 0
}

// Exists reports whether the code names a live room.
func (r *Registry) Exists(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[code]
	return ok
}

// Members returns a copy of the participant list in join order.
func (r *Registry) Members(code string) []Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[code]
	if !ok {
		return nil
	}
	out := make([]Member, len(rm.members))
	copy(out, rm.members)
	return out
}
