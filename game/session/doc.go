// Package session provides in-memory session management for the FreeCell server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Manager is the main session manager and satisfies service.SessionManager.
// Each service.Session owns one engine.GameEngine; the engine itself is not
// synchronized, so callers go through the service layer which serializes
// access.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters drawn from crypto/rand. Caller-chosen
// IDs are accepted as long as they are short and contain no whitespace or
// slashes. Lookups are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drop sessions idle for more than an hour
//	removed := manager.CleanupExpiredSessions(time.Hour)
//
// Sessions are never written to disk; a server restart starts empty.
package session
