package httpx

import (
	"log/slog"
	"net/http"

	"screenroom/internal/app"
	"screenroom/internal/room"
	"screenroom/internal/ws"
	"screenroom/pkg/auth"
	"screenroom/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, hub *ws.Hub, reg *room.Registry, tokens *auth.Tokens) http.Handler {
	mw := NewMiddleware(cfg)
	api := &RoomsAPI{Registry: reg, Tokens: tokens, TokenTTL: cfg.TokenTTL}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint (handshake carries roomCode + username + token)
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Room endpoints
	mux.Handle("POST /api/rooms", http.HandlerFunc(api.Create))
	mux.Handle("POST /api/rooms/join", http.HandlerFunc(api.Join))

	// CORS + rate limit applied globally
	return mw.Wrap(mux)
}
