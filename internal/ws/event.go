package ws

import "encoding/json"

// Wire event names. Client to server: chat, share-screen,
// stop-screen-share. Server to client: the rest.
const (
	EvtChat             = "chat"
	EvtAnnounce         = "announce"
	EvtParticipantCount = "participant-count"
	EvtShareScreen      = "share-screen"
	EvtScreenShared     = "screen-shared"
	EvtStopShareScreen  = "stop-screen-share"
	EvtShareStopped     = "screen-share-stopped"
)

// Event is the JSON envelope for every websocket frame in both
// directions. Data stays opaque until the event name says how to read
// it; screen-share descriptors are never parsed at all.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ChatMessage is the server-side chat payload (the client sends a bare
// string, the server attributes it).
type ChatMessage struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

// encode marshals an event frame. Payloads here are small structs,
// strings and ints that cannot fail to marshal.
func encode(name string, data any) []byte {
	raw, _ := json.Marshal(data)
	b, _ := json.Marshal(Event{Event: name, Data: raw})
	return b
}
