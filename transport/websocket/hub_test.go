package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/freecell/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func testState() *engine.GameState {
	state := &engine.GameState{
		GameID:    "game-1",
		Seed:      42,
		MoveCount: 3,
	}
	state.Tableau[0] = []engine.Card{{Suit: engine.Spades, Rank: engine.King}}
	return state
}

func readMessage(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case data := <-ch:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}

	// Second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)

	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)

	if hub.ClientCount(sessionID) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount(sessionID))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "other")

	hub.registerClient(client)
	hub.registerClient(other)

	hub.BroadcastToSession("broadcast-test", testState())

	message := readMessage(t, client.send)
	if message.SessionID != "broadcast-test" {
		t.Errorf("Expected sessionID broadcast-test, got %s", message.SessionID)
	}
	if message.Event != EventStateUpdate {
		t.Errorf("Expected event %s, got %s", EventStateUpdate, message.Event)
	}
	if message.GameState == nil || message.GameState.Tableau[0][0].Rank != engine.King {
		t.Error("GameState not correctly transmitted")
	}

	if len(other.send) != 0 {
		t.Error("Clients of other sessions should not receive the update")
	}
}

func TestHubBroadcastWon(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "won-test")
	hub.registerClient(client)

	state := testState()
	state.Won = true
	hub.BroadcastWon("won-test", state)

	message := readMessage(t, client.send)
	if message.Event != EventWon {
		t.Errorf("Expected event %s, got %s", EventWon, message.Event)
	}
	if !message.GameState.Won {
		t.Error("Expected won state")
	}
}

func TestHubSlowClientDropped(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, sessionID: "slow", send: make(chan []byte, 1)}
	hub.registerClient(client)

	hub.BroadcastToSession("slow", testState())
	hub.BroadcastToSession("slow", testState())

	if hub.ClientCount("slow") != 0 {
		t.Error("Expected client with a full buffer to be dropped")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message queued")
	}
}

func TestHubBroadcastTick(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub, "tick-test")
	hub.register <- client

	hub.BroadcastTick("tick-test", 95*time.Second+400*time.Millisecond)

	message := readMessage(t, client.send)
	if message.Event != EventTick {
		t.Fatalf("Expected event %s, got %s", EventTick, message.Event)
	}
	data, ok := message.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object payload, got %T", message.Data)
	}
	if data["elapsed_seconds"] != float64(95) {
		t.Errorf("Expected 95 elapsed seconds, got %v", data["elapsed_seconds"])
	}

	sessions := hub.ActiveSessions()
	if len(sessions) != 1 || sessions[0] != "tick-test" {
		t.Errorf("Expected tick-test to be active, got %v", sessions)
	}
}

func TestHubConcurrentBroadcast(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			client := newTestClient(hub, "race")
			hub.registerClient(client)
			hub.unregisterClient(client)
		}()
		go func() {
			defer wg.Done()
			hub.BroadcastToSession("race", testState())
		}()
	}
	wg.Wait()

	if hub.ClientCount("race") != 0 {
		t.Errorf("Expected no clients left, got %d", hub.ClientCount("race"))
	}
}

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
	t.Cleanup(server.Close)
	return server
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := newTestServer(t, hub)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 1 })

	conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 0 })
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := newTestServer(t, hub)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("msg-test") == 1 })

	hub.BroadcastToSession("msg-test", testState())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, messageData, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(messageData, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}

	if message.SessionID != "msg-test" {
		t.Errorf("Expected sessionID 'msg-test', got %s", message.SessionID)
	}
	if message.GameState.GameID != "game-1" || message.GameState.MoveCount != 3 {
		t.Error("GameState not correctly received")
	}
}

func TestWebSocketUpgradeAfterShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	served := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(served)
		hub.ServeWS(w, r, "late")
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("Expected ServeWS to return once the hub has stopped")
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("Expected a going-away close, got %v", err)
	}
	if hub.ClientCount("late") != 0 {
		t.Error("Expected no client registered after shutdown")
	}
}
