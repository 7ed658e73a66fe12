// Command autoplay drives a game on a running FreeCell server through the REST
// API. It deals (or resumes) a session, then keeps asking the server for a
// hint and playing it until no card can go to a foundation. It never searches
// beyond that one step, so most deals stop long before they are won; it is
// meant for clearing the obvious cards and for smoke-testing a deployment.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/service"
)

// Client talks to the FreeCell REST API for one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) call(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*engine.GameState, error) {
	var reqBody interface{}
	if configID != "" {
		reqBody = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.call(ctx, http.MethodPost, "/api/sessions", reqBody, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) GetState(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.call(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (c *Client) NewGame(ctx context.Context, seed int64) (*engine.GameState, error) {
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.call(ctx, http.MethodPost, c.sessionPath("/new-game"), map[string]int64{"seed": seed}, &resp); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	return resp.State, nil
}

func (c *Client) Hint(ctx context.Context) (*service.HintResult, error) {
	var result service.HintResult
	if err := c.call(ctx, http.MethodGet, c.sessionPath("/hint"), nil, &result); err != nil {
		return nil, fmt.Errorf("hint: %w", err)
	}
	return &result, nil
}

func (c *Client) Move(ctx context.Context, req service.MoveRequest) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.call(ctx, http.MethodPost, c.sessionPath("/move"), req, &result); err != nil {
		return nil, fmt.Errorf("move: %w", err)
	}
	return &result, nil
}

// playOptions controls a single autoplay run
type playOptions struct {
	MaxMoves int
	Delay    time.Duration
	Verbose  bool
}

// playSummary reports what a run achieved
type playSummary struct {
	Moves       int
	Foundation  int
	Won         bool
	StopReason  string
	FinalState  *engine.GameState
	MovedToHome []engine.Card
}

// play plays hints on the client's session starting from state
func play(ctx context.Context, c *Client, state *engine.GameState, opts playOptions) (*playSummary, error) {
	summary := &playSummary{FinalState: state}

	for summary.Moves < opts.MaxMoves {
		if state.Won {
			summary.Won = true
			summary.StopReason = "won"
			break
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		hint, err := c.Hint(ctx)
		if err != nil {
			return summary, err
		}
		if !hint.Found || hint.Hint == nil {
			summary.StopReason = "no foundation move"
			break
		}

		req := service.MoveRequest{From: hint.Hint.From, To: engine.Foundation(hint.Hint.Foundation)}
		if req.From.Zone == engine.ZoneTableau {
			req.Row = len(state.Tableau[req.From.Index]) - 1
		}

		result, err := c.Move(ctx, req)
		if err != nil {
			return summary, err
		}
		if !result.Success {
			summary.StopReason = "move rejected: " + result.Reason
			break
		}

		state = result.GameState
		summary.FinalState = state
		summary.Moves++
		summary.MovedToHome = append(summary.MovedToHome, result.Moved...)
		if opts.Verbose {
			log.Printf("%s %s -> %s (%d/52)", hint.Hint.Card, req.From, req.To, state.FoundationCards)
		}
		if result.Won {
			summary.Won = true
			summary.StopReason = "won"
			break
		}

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	if summary.StopReason == "" {
		summary.StopReason = "move limit reached"
	}
	if summary.FinalState != nil {
		summary.Foundation = summary.FinalState.FoundationCards
	}
	return summary, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Play every obvious foundation move on a FreeCell server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "Game server URL",
				Sources: cli.EnvVars("FREECELL_API_URL"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Preset to deal (classic, practice, strict, relaxed)",
			},
			&cli.StringFlag{
				Name:  "continue",
				Usage: "Resume playing an existing session by ID",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Deal number to play (0 keeps the preset's deal)",
			},
			&cli.IntFlag{
				Name:  "max-moves",
				Value: 52,
				Usage: "Maximum moves to play",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Delay between moves",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log every move",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Connecting to game server at %s", cmd.String("url"))
	client := NewClient(cmd.String("url"))

	var state *engine.GameState
	var err error

	if id := cmd.String("continue"); id != "" {
		client.sessionID = id
		state, err = client.GetState(ctx)
		if err != nil {
			return fmt.Errorf("resume session %s: %w", id, err)
		}
		log.Printf("🔄 Resuming session: %s", id)
	} else {
		state, err = client.CreateSession(ctx, cmd.String("config"))
		if err != nil {
			return err
		}
		log.Printf("✨ Session created: %s", client.sessionID)
	}

	if seed := cmd.Int64("seed"); seed > 0 {
		state, err = client.NewGame(ctx, seed)
		if err != nil {
			return err
		}
	}
	log.Printf("Deal #%d, %d/52 on foundations", state.Seed, state.FoundationCards)

	summary, err := play(ctx, client, state, playOptions{
		MaxMoves: cmd.Int("max-moves"),
		Delay:    cmd.Duration("delay"),
		Verbose:  cmd.Bool("verbose"),
	})
	if err != nil {
		return err
	}

	log.Printf("Moves=%d, Foundation=%d/52, Stopped: %s", summary.Moves, summary.Foundation, summary.StopReason)
	if summary.Won {
		log.Printf("🎉 VICTORY! Session: %s", client.sessionID)
	} else {
		log.Printf("Session: %s", client.sessionID)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
