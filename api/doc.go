// Package api provides HTTP REST API handlers for the FreeCell server.
//
// The api package implements:
//   - Session management endpoints
//   - Move, select/drop, undo and hint endpoints
//   - Preset listing and creation
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Overview of several sessions (?sessionIds=a,b or ?configName=x)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board
//   - POST /api/sessions/{id}/new-game - Deal again ({"seed": 617}, 0 or absent for random)
//   - POST /api/sessions/{id}/select - Pick up a run ({"location": {...}, "row": 4})
//   - POST /api/sessions/{id}/drop - Drop the selection ({"target": {...}})
//   - POST /api/sessions/{id}/cancel - Clear the selection
//   - POST /api/sessions/{id}/move - Select and drop in one call
//   - POST /api/sessions/{id}/bulk-move - Up to 50 moves, stopping at the first rejection
//   - POST /api/sessions/{id}/undo - Revert the last committed move
//   - GET /api/sessions/{id}/hint - Suggest a foundation move
//   - GET /api/sessions/{id}/possible-moves - Legal single-step moves
//   - GET /api/sessions/{id}/history - Move log (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List presets
//   - GET /api/configs/{name} - Get one preset
//   - POST /api/configs - Save a preset
//
// Locations are {"zone": "tableau|freecell|foundation", "index": N}. A move
// request looks like:
//
//	{
//	  "from": {"zone": "tableau", "index": 3},
//	  "row": 4,
//	  "to": {"zone": "tableau", "index": 6}
//	}
//
// A rejected move is not an HTTP error: the response is 200 with
// "success": false and a reason code such as "illegal_placement" or
// "exceeds_capacity". Malformed locations are 400, unknown sessions 404.
//
// Usage:
//
//	server := api.NewServer(gameService, hub, api.WithRateLimit(20, 40))
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{
//	  "error": "error message"
//	}
package api

//
// Enriched Responses (Move and Bulk Move)
//
// Move (POST /api/sessions/{id}/move)
//   Response:
//     - success, reason, moved: cards that changed place
//     - won: true only on the move that completed the game
//     - events: move/rejected/won entries for display
//     - game_state: board, free_cells, foundations, undo_depth, max_movable
//
// Bulk Move (POST /api/sessions/{id}/bulk-move)
//   Response:
//     - requested_moves, moves_executed
//     - stopped_reason (text), stop_reason_code (engine reason), stopped_on_move (1-based), truncated, limit
//     - steps: [{ idx, from, row, to, cards, success, reason, won? }]
//     - possible_moves: legal moves from the final position
