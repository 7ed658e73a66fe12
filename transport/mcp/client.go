package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"FreeCell",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`FreeCell - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Move all 52 cards onto the four foundations, each built up by suit from Ace to King.

LOCATIONS:
Write locations as tableau[0..7], freecell[0..3] or foundation[0..3]. Rows in a
tableau column count from 0 at the bottom (the card dealt first).

AVAILABLE TOOLS:
- game_state: Board, free cells, foundations and the legal moves
- move: Move one run (from, row, to) - requires intent explanation
- bulk_move: Several moves in one call, stopping at the first rejection
- undo: Revert the last move
- hint: Suggest a card that can go to a foundation now
- possible_moves: Legal single-step moves only
- new_game: Deal again, optionally with a seed
- describe_column: Row-by-row view of one tableau column with its movable run
- move_history: View past moves
- create_session / get_session / list_sessions: Session management
- list_configs: Available presets
- game_instructions: Full rules

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// locationSchema describes a location argument
func locationSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description + ` ("tableau[3]", "freecell[0]", "foundation[1]")`,
	}
}

func sessionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional preset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionSchema(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board and the legal moves from it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionSchema(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the run starting at row of the source to the target. For free cells and foundations the row is ignored.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionSchema(),
				"from":       locationSchema("Source pile"),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the first card of the run in a tableau column (0 = bottom). Defaults to the top card.",
				},
				"to": locationSchema("Target pile"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "from", "to"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, stopping at the first rejected one", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionSchema(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"from": locationSchema("Source pile"),
							"row": map[string]interface{}{
								"type":        "integer",
								"description": "Row of the first card of the run (optional, defaults to the top card)",
							},
							"to": locationSchema("Target pile"),
						},
						"required": []string{"from", "to"},
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "undo",
		Description: "Revert the most recent move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionSchema(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleUndo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Suggest a card that can be played to a foundation right now",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionSchema(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "possible_moves",
		Description: "List every legal single-step move in the current position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionSchema(),
			},
			Required: []string{"session_id"},
		},
	}, c.handlePossibleMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Deal a new game in the session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionSchema(),
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Deal number for a reproducible game (optional, random when omitted)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionSchema(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_column",
		Description: "Describe one tableau column card by card, including which rows start a movable run. Useful before moving a long run.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionSchema(),
				"column": map[string]interface{}{
					"type":        "integer",
					"description": "Tableau column (0-7)",
				},
			},
			Required: []string{"session_id", "column"},
		},
	}, c.handleDescribeColumn)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// parseLocation accepts "tableau[3]" as rendered by the board views, or an
// object {"zone": "tableau", "index": 3}
func parseLocation(v interface{}) (engine.Location, error) {
	switch val := v.(type) {
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		open := strings.IndexByte(s, '[')
		if open <= 0 || !strings.HasSuffix(s, "]") {
			return engine.Location{}, fmt.Errorf("location %q must look like tableau[3]", val)
		}
		index, err := strconv.Atoi(s[open+1 : len(s)-1])
		if err != nil {
			return engine.Location{}, fmt.Errorf("location %q has a non-numeric index", val)
		}
		loc := engine.Location{Zone: engine.Zone(s[:open]), Index: index}
		return loc, loc.Validate()
	case map[string]interface{}:
		zone, _ := val["zone"].(string)
		index, ok := val["index"].(float64)
		if !ok {
			return engine.Location{}, fmt.Errorf("location index is required")
		}
		loc := engine.Location{Zone: engine.Zone(strings.ToLower(zone)), Index: int(index)}
		return loc, loc.Validate()
	case nil:
		return engine.Location{}, fmt.Errorf("location is required")
	default:
		return engine.Location{}, fmt.Errorf("unsupported location %v", v)
	}
}

// parseMove builds a move request; a missing row means the top card of the source
func (c *Client) parseMove(ctx context.Context, sessionID string, args map[string]interface{}, state **engine.GameState) (service.MoveRequest, error) {
	from, err := parseLocation(args["from"])
	if err != nil {
		return service.MoveRequest{}, fmt.Errorf("from: %w", err)
	}
	to, err := parseLocation(args["to"])
	if err != nil {
		return service.MoveRequest{}, fmt.Errorf("to: %w", err)
	}

	req := service.MoveRequest{From: from, To: to}
	if row, ok := args["row"].(float64); ok {
		req.Row = int(row)
		return req, nil
	}

	if from.Zone == engine.ZoneTableau {
		// Fetch the board once per call so bulk moves don't refetch per move
		if *state == nil {
			var fetched engine.GameState
			if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &fetched); err != nil {
				return service.MoveRequest{}, err
			}
			*state = &fetched
		}
		if n := len((*state).Tableau[from.Index]); n > 0 {
			req.Row = n - 1
		}
	}
	return req, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	err := c.apiCall(ctx, "POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		progress := ""
		if s.GameState != nil {
			progress = fmt.Sprintf(", Foundation: %d/%d", s.GameState.FoundationCards, engine.DeckSize)
			if s.GameState.Won {
				progress += ", won"
			}
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s%s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), progress)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var session service.SessionInfo
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var state engine.GameState
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var possible possibleMovesResponse
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/possible-moves"), nil, &possible); err != nil {
		// The board alone is still useful
		return mcp.NewToolResultText(formatGameState(&state)), nil
	}

	result := formatGameState(&state) + "\n\n" + formatPossibleMoves(possible.Moves)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	var state *engine.GameState
	move, err := c.parseMove(ctx, sessionID, args, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.MoveResult
	err = c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), move, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	if len(movesRaw) == 0 {
		return mcp.NewToolResultError("moves must not be empty"), nil
	}

	// Rows default against the board before the first move only
	var state *engine.GameState
	moves := make([]service.MoveRequest, 0, len(movesRaw))
	for i, m := range movesRaw {
		moveArgs, ok := m.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("move %d: expected an object with from/row/to", i+1)), nil
		}
		move, err := c.parseMove(ctx, sessionID, moveArgs, &state)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("move %d: %v", i+1, err)), nil
		}
		moves = append(moves, move)
	}

	body := map[string]interface{}{
		"moves": moves,
	}

	var result service.BulkMoveResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var result service.UndoResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/undo"), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	header := "✗ Nothing to undo"
	if result.Undone {
		header = "✓ Undone"
	}
	text := fmt.Sprintf("%s\n%s\n\n%s", header, result.Message, formatGameState(result.GameState))
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var result service.HintResult
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/hint"), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !result.Found || result.Hint == nil {
		msg := result.Message
		if msg == "" {
			msg = "No foundation move available"
		}
		return mcp.NewToolResultText(msg), nil
	}

	h := result.Hint
	return mcp.NewToolResultText(fmt.Sprintf("Hint: move %s from %s to %s",
		h.Card, h.From, engine.Foundation(h.Foundation))), nil
}

type possibleMovesResponse struct {
	Count int                    `json:"count"`
	Moves []engine.MoveCandidate `json:"moves"`
}

func (c *Client) handlePossibleMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var response possibleMovesResponse
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/possible-moves"), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPossibleMoves(response.Moves)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	seed := request.GetInt("seed", 0)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	body := map[string]int64{"seed": int64(seed)}
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/new-game"), body, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", strconv.Itoa(int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", strconv.Itoa(int(limit)))
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	err := c.apiCall(ctx, "GET", path, nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		deal := "random deal"
		if config.Seed != 0 {
			deal = fmt.Sprintf("deal #%d", config.Seed)
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  %s, undo depth: %d\n\n",
			config.Name, config.ConfigID, config.Description, deal, config.HistoryLimit)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🃏 FreeCell - Complete Instructions

GAME OBJECTIVE:
Build all four foundations up by suit from Ace to King. The game is won when all
52 cards are on the foundations.

LAYOUT:
• Tableau: 8 columns. The first four are dealt 7 cards, the last four 6 cards.
  Every card is face up. Row 0 is the bottom card; the last card listed is the top.
• Free cells: 4 slots, each holding at most one card.
• Foundations: 4 piles, one per suit once started.

MOVING CARDS:
• Tableau: a card goes onto a card one rank higher of the opposite color
  (7♥ on 8♠). Any card may go into an empty column.
• Free cell: any single card may go into an empty free cell.
• Foundation: an Ace starts an empty foundation; after that the next rank of
  the same suit (A♥ then 2♥ ...).
• Runs: a descending, alternating-color run that ends at the top of a column
  moves as one unit onto a tableau target.

HOW MANY CARDS CAN MOVE AT ONCE:
  (1 + empty free cells) × 2^(empty columns)
The target column never counts as empty for its own move. With 2 free cells
and 1 empty column you can move 6 cards, or 3 into that empty column.

🤖 AI AGENTS - STRATEGY:

1. **Read the board first**: game_state lists every legal move. Prefer
   foundation moves, then moves that empty a column or free a buried Ace.
2. **Guard the free cells**: each occupied free cell costs one card of
   capacity. Empty columns double capacity, so they are worth more than a
   free cell.
3. **Dig for low cards**: Aces and Twos buried deep in a column block
   everything above them. Plan the sequence of moves that uncovers them.
4. **Use describe_column** before moving long runs to see where each
   movable run starts.
5. **Undo is limited**: only the most recent moves can be reverted (the
   depth is shown as "Undo" in the header).

MOVE FORMAT:
  move { "from": "tableau[2]", "row": 4, "to": "tableau[6]" }
  move { "from": "freecell[0]", "to": "foundation[1]" }
The row may be omitted to move only the top card.

REJECTION CODES:
• illegal_placement - the card does not fit on the target
• exceeds_capacity - the run is longer than the free space allows
• multi_card_to_non_tableau - only single cards go to free cells or foundations
• stale_selection - the run is no longer at the top of its column
• same_location - source and target are the same pile
• nothing_to_select - nothing to pick up at that row
• game_won - the game is over

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has a unique 4-character ID
- new_game with a seed replays a known deal

Good luck clearing the deal! 🂡`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeColumn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	column := request.GetInt("column", -1)

	if column < 0 || column >= engine.NumTableau {
		return mcp.NewToolResultError(fmt.Sprintf("Column %d is out of range (0-%d)", column, engine.NumTableau-1)), nil
	}

	var state engine.GameState
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeColumn(&state, column)), nil
}

// describeColumn lists a column card by card and marks the rows from which
// the rest of the column moves as one run
func describeColumn(state *engine.GameState, column int) string {
	cards := state.Tableau[column]

	var b strings.Builder
	fmt.Fprintf(&b, "Column %s (%d cards):\n━━━━━━━━━━━━━━━━━━━━━━━━\n", engine.Tableau(column), len(cards))
	if len(cards) == 0 {
		b.WriteString("(empty) - any card or run within capacity can move here\n")
		return b.String()
	}

	movableFrom := len(cards) - 1
	for movableFrom > 0 && len(engine.DetectSequence(cards, movableFrom-1)) == len(cards)-movableFrom+1 {
		movableFrom--
	}

	for row, card := range cards {
		marker := ""
		switch {
		case row == len(cards)-1:
			marker = "  ← top"
		case row >= movableFrom:
			marker = fmt.Sprintf("  ← run of %d", len(cards)-row)
		}
		fmt.Fprintf(&b, "row %2d: %-4s %s%s\n", row, card, card.Color(), marker)
	}

	run := len(cards) - movableFrom
	fmt.Fprintf(&b, "\nLongest movable run: %d card(s) from row %d (capacity now: %d)\n",
		run, movableFrom, state.MaxMovable)
	return b.String()
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func cardOrBlank(card *engine.Card) string {
	if card == nil {
		return "  "
	}
	return card.String()
}

func formatCardList(cards []engine.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	// Header (include cumulative totals)
	fmt.Fprintf(&result, "Deal: #%d | Moves: %d | Foundation: %d/%d | Undo: %d | Max movable: %d | Time: %ds\n\n",
		state.Seed, state.MoveCount, state.FoundationCards, engine.DeckSize,
		state.UndoDepth, state.MaxMovable, state.ElapsedSeconds)

	result.WriteString("Free cells:  ")
	for i, card := range state.FreeCells {
		if i > 0 {
			result.WriteString(" ")
		}
		fmt.Fprintf(&result, "[%s]", cardOrBlank(card))
	}
	result.WriteString("\n")

	result.WriteString("Foundations: ")
	for i, pile := range state.Foundations {
		if i > 0 {
			result.WriteString(" ")
		}
		if len(pile) == 0 {
			result.WriteString("[--]")
		} else {
			fmt.Fprintf(&result, "[%s]", pile[len(pile)-1])
		}
	}
	result.WriteString("\n\nTableau (bottom → top):\n")

	for i, column := range state.Tableau {
		if len(column) == 0 {
			fmt.Fprintf(&result, "  %d: (empty)\n", i)
			continue
		}
		fmt.Fprintf(&result, "  %d: %s\n", i, formatCardList(column))
	}

	if sel := state.Selection; sel != nil {
		fmt.Fprintf(&result, "\nSelected: %s from %s row %d\n", formatCardList(sel.Run), sel.Source, sel.Row)
	}

	// Status
	if state.Won {
		result.WriteString("\n🎉 VICTORY!")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatPossibleMoves(moves []engine.MoveCandidate) string {
	if len(moves) == 0 {
		return "Possible moves: none"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Possible moves (%d):\n", len(moves))
	for _, m := range moves {
		if m.From.Zone == engine.ZoneTableau {
			fmt.Fprintf(&b, "- %s row %d → %s: %s\n", m.From, m.Row, m.To, formatCardList(m.Cards))
		} else {
			fmt.Fprintf(&b, "- %s → %s: %s\n", m.From, m.To, formatCardList(m.Cards))
		}
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Move successful: %s\n", formatCardList(result.Moved))
	} else {
		fmt.Fprintf(&b, "✗ Move failed (%s)\n", result.Reason)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	// Session header
	configName := ""
	if result.GameState != nil {
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s\n", sessionID, configName)

	// Bulk summary
	fmt.Fprintf(&b, "Executed %d/%d moves\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}

	// Per-step trace for this call
	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			status := "✓"
			if !s.Success {
				status = "✗ " + s.Reason
			}
			fmt.Fprintf(&b, "%d. %s row %d → %s %s %s\n", s.Idx, s.From, s.Row, s.To, formatCardList(s.Cards), status)
		}
	}

	if result.Won {
		b.WriteString("\n🎉 Game won!\n")
	}

	// Possible moves from the final position
	if len(result.PossibleMoves) > 0 {
		b.WriteString("\n")
		b.WriteString(formatPossibleMoves(result.PossibleMoves))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) - Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗ " + move.Reason
		}

		switch move.Action {
		case engine.ActionMove:
			from, to := "?", "?"
			if move.From != nil {
				from = move.From.String()
			}
			if move.To != nil {
				to = move.To.String()
			}
			fmt.Fprintf(&b, "%d. move %s → %s %s %s [moves: %d]\n",
				move.MoveNumber, from, to, formatCardList(move.Cards), status, move.MoveCount)
		default:
			fmt.Fprintf(&b, "%d. %s %s [moves: %d]\n", move.MoveNumber, move.Action, status, move.MoveCount)
		}
	}

	return b.String()
}
