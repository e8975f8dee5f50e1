package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"screenroom/internal/room"
	"screenroom/pkg/auth"
)

// RoomsAPI is the pre-realtime phase: create-room mints a session
// identity and a room, join-room validates membership up front. The
// returned session token is what the websocket handshake presents.
type RoomsAPI struct {
	Registry *room.Registry
	Tokens   *auth.Tokens
	TokenTTL time.Duration
}

type joinReq struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
}

type createResp struct {
	RoomCode     string `json:"roomCode"`
	IsMaster     bool   `json:"isMaster"`
	SessionToken string `json:"sessionToken"`
}

type joinResp struct {
	Success      bool   `json:"success"`
	IsMaster     bool   `json:"isMaster"`
	SessionToken string `json:"sessionToken"`
}

type errorResp struct {
	Message string `json:"message"`
}

// Create handles create-room: the caller becomes the master of a fresh
// room. Never fails under normal operation.
func (a *RoomsAPI) Create(w http.ResponseWriter, r *http.Request) {
	identity := uuid.NewString()
	tok, err := a.Tokens.Issue(identity, a.TokenTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	code := a.Registry.Create(identity)
	writeJSON(w, http.StatusOK, createResp{RoomCode: code, IsMaster: true, SessionToken: tok})
}

// Join handles join-room. A caller presenting a valid bearer token
// keeps its identity (that is how the master is recognized on
// re-join); anyone else gets a fresh one.
func (a *RoomsAPI) Join(w http.ResponseWriter, r *http.Request) {
	var req joinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Message: "invalid payload"})
		return
	}
	req.RoomCode = strings.TrimSpace(req.RoomCode)
	req.Username = strings.TrimSpace(req.Username)
	if req.RoomCode == "" || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Message: "username and room code are required"})
		return
	}

	identity := a.bearerIdentity(r)
	if identity == "" {
		identity = uuid.NewString()
	}
	tok, err := a.Tokens.Issue(identity, a.TokenTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	role, err := a.Registry.Join(req.RoomCode, identity, req.Username)
	switch {
	case errors.Is(err, room.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResp{Message: "room not found"})
		return
	case errors.Is(err, room.ErrFull):
		writeJSON(w, http.StatusForbidden, errorResp{Message: "room is full"})
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, joinResp{
		Success:      true,
		IsMaster:     role == room.RoleMaster,
		SessionToken: tok,
	})
}

// bearerIdentity resolves an optional Authorization header to an
// existing session identity, "" if absent or unverifiable.
func (a *RoomsAPI) bearerIdentity(r *http.Request) string {
	b := r.Header.Get("Authorization")
	if !strings.HasPrefix(b, "Bearer ") {
		return ""
	}
	id, err := a.Tokens.Resolve(strings.TrimPrefix(b, "Bearer "))
	if err != nil {
		return ""
	}
	return id
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
