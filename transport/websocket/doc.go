// Package websocket provides the WebSocket push channel for the FreeCell server.
//
// The websocket package implements:
//   - Session-scoped broadcasting of game state
//   - Win notifications and elapsed-time ticks
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub tracks clients per session. Each connection gets a read
// goroutine that only watches for close and pong frames, and a write
// goroutine that drains the client's send buffer and pings the peer.
// Clients that fall behind are dropped.
//
// Message Protocol:
//
// Every frame is one JSON Message:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "won", "game_state": {...}, "data": {"move_count": 93}}
//	{"session_id": "ab12", "event": "tick", "data": {"elapsed_seconds": 95}}
//
// Clients connect with ?session=<id>. The connection is read-only from the
// client's point of view; moves go through the REST API.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(sessionID, state)
package websocket
