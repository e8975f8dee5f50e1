package room

import "errors"

// Capacity is the maximum number of non-master participants per room.
// The master never counts toward it, so a full room holds 10 people.
const Capacity = 9

var (
	ErrNotFound = errors.New("room not found")
	ErrFull     = errors.New("room is full")
)

// Role classifies a session identity within a room.
type Role string

const (
	RoleMaster      Role = "master"
	RoleParticipant Role = "participant"
)

// Member is one participant entry; ID is the session identity that
// joined, Username is whatever name they joined under.
type Member struct {
	ID       string
	Username string
}

// Room is an ephemeral session. Code and Master are set at creation and
// never change; members is insertion-ordered and unique by ID.
type Room struct {
	Code    string
	Master  string
	members []Member
}
