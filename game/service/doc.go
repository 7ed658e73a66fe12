// Package service provides the business logic layer for the FreeCell server.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration management and loading
//   - Move processing (select/drop, one-shot and bulk moves)
//   - Undo, hints, and legal move listing
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game preset loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Engines are not safe for concurrent use, so every call is
// serialized through the service mutex. Locations are validated here and
// reported as ErrInvalidLocation before they can reach the engine.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, sessionInfo.ID, service.MoveRequest{
//		From: engine.Tableau(0),
//		Row:  6,
//		To:   engine.FreeCell(0),
//	})
//
// Session Management:
//
// Sessions are identified by unique 4-character IDs and each owns one engine.
// A session survives across deals: new-game replaces the board but keeps the
// cumulative move log.
package service
