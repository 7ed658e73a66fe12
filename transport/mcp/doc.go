// Package mcp provides the Model Context Protocol tool server for FreeCell.
//
// The mcp package implements:
//   - MCP tool definitions for AI agents
//   - A thin client that proxies every tool to the REST API
//   - Plain-text renderings of the board, moves and history
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - game_state: Board, free cells, foundations and legal moves
//   - move: Move one run, named by source, row and target
//   - bulk_move: Several moves in sequence, stopping at the first rejection
//   - undo: Revert the last committed move
//   - hint: Suggest a foundation move
//   - possible_moves: Legal single-step moves
//   - new_game: Deal again, optionally by seed
//   - describe_column: Card-by-card view of a tableau column
//   - move_history: Paginated move log
//   - create_session, get_session, list_sessions: Session management
//   - list_configs: Available presets
//   - game_instructions: Rules and strategy notes
//
// Locations are written the way the board renders them: tableau[3],
// freecell[0], foundation[1]. A move without a row moves the top card.
//
// Transport Modes:
//
// The same MCP server is served two ways by the main package:
//   - Stdio: server.ServeStdio for local MCP clients
//   - HTTP: POST /mcp next to the REST API
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
