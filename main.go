// Command freecell starts the FreeCell game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, preset directory, debug logging, API rate limits,
// and optional ngrok tunneling for easy external access during development.
// Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/freecell/api"
	"github.com/wricardo/freecell/game/config"
	"github.com/wricardo/freecell/game/service"
	"github.com/wricardo/freecell/game/session"
	"github.com/wricardo/freecell/transport/mcp"
	"github.com/wricardo/freecell/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/time/rate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "FreeCell Server"
)

// Background routine timing
const (
	sessionCleanupInterval = 1 * time.Hour
	sessionMaxAge          = 24 * time.Hour
	tickInterval           = 1 * time.Second
)

// options holds the resolved command-line configuration
type options struct {
	port          int
	host          string
	configDir     string
	defaultPreset string
	debug         bool
	ngrokEnabled  bool
	ngrokAuth     string
	ngrokDomain   string
	rateLimit     float64
	rateBurst     int
	externalURL   string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

// services bundles the managers behind the game service so background
// routines can reach them
type services struct {
	game     service.GameService
	sessions *session.Manager
	configs  *config.Manager
}

// main loads .env, builds the CLI and runs the selected command.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		// Only log if it's not a "file not found" error
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

// newCommand builds the CLI. Flags are inherited by the subcommands.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "freecell",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "default-config",
				Usage:   "Preset for sessions created without one (default: classic)",
				Sources: cli.EnvVars("DEFAULT_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
			&cli.Float64Flag{
				Name:    "rate-limit",
				Value:   20,
				Usage:   "API requests per second (0 disables throttling)",
				Sources: cli.EnvVars("RATE_LIMIT"),
			},
			&cli.IntFlag{
				Name:    "rate-burst",
				Value:   40,
				Usage:   "API burst size",
				Sources: cli.EnvVars("RATE_BURST"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runServerCommand,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServerCommand,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, reusing a running API server if one is found",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "External API server to proxy to when it is reachable",
						Sources: cli.EnvVars("FREECELL_API_URL"),
					},
				},
				Action: runMCPCommand,
			},
		},
	}
}

// loadOptions reads the resolved flag values
func loadOptions(cmd *cli.Command) options {
	return options{
		port:          cmd.Int("port"),
		host:          cmd.String("host"),
		configDir:     cmd.String("config-dir"),
		defaultPreset: cmd.String("default-config"),
		debug:         cmd.Bool("debug"),
		ngrokEnabled:  cmd.Bool("ngrok"),
		ngrokAuth:     cmd.String("ngrok-auth"),
		ngrokDomain:   cmd.String("ngrok-domain"),
		rateLimit:     cmd.Float64("rate-limit"),
		rateBurst:     cmd.Int("rate-burst"),
		externalURL:   cmd.String("api-url"),
	}
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	opts := loadOptions(cmd)
	log.Printf("Starting %s v%s (mode: server)", AppName, Version)

	svcs, err := initializeServices(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := applyDefaultPreset(svcs, opts.defaultPreset); err != nil {
		return err
	}

	return runHTTPServer(ctx, opts, svcs)
}

func runMCPCommand(ctx context.Context, cmd *cli.Command) error {
	opts := loadOptions(cmd)
	log.Printf("Starting %s v%s (mode: mcp)", AppName, Version)

	svcs, err := initializeServices(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := applyDefaultPreset(svcs, opts.defaultPreset); err != nil {
		return err
	}

	return runStdioMCPWithInternalServer(ctx, opts, svcs)
}

// initializeServices wires session/config managers and the game service.
func initializeServices(configDir string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()

	return &services{
		game:     service.NewGameService(sessionManager, configManager),
		sessions: sessionManager,
		configs:  configManager,
	}, nil
}

// applyDefaultPreset switches the preset used for sessions created without
// one. An empty name keeps classic.
func applyDefaultPreset(svcs *services, name string) error {
	if name == "" {
		return nil
	}
	if err := svcs.configs.SetDefault(name); err != nil {
		return fmt.Errorf("default preset %q: %w", name, err)
	}
	log.Printf("[CONFIG] default preset: %s", name)
	return nil
}

// newAPIServer creates the REST API with the configured rate limit
func newAPIServer(opts options, svcs *services, hub *websocket.Hub) *api.Server {
	return api.NewServer(svcs.game, hub, api.WithRateLimit(rate.Limit(opts.rateLimit), opts.rateBurst))
}

// startBackgroundRoutines launches session cleanup, the preset watcher and
// the elapsed-time ticker. They stop when ctx is done.
func startBackgroundRoutines(ctx context.Context, svcs *services, hub *websocket.Hub, wg *sync.WaitGroup) {
	wg.Add(3)

	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, svcs.sessions, sessionCleanupInterval, sessionMaxAge)
	}()

	go func() {
		defer wg.Done()
		if err := svcs.configs.Watch(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Warning: preset watcher stopped: %v", err)
		}
	}()

	go func() {
		defer wg.Done()
		tickRoutine(ctx, svcs.game, hub, tickInterval)
	}()
}

// newRootHandler combines the API server with the /mcp endpoint
func newRootHandler(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel. It returns once ctx is done and
// the server has shut down.
func runHTTPServer(ctx context.Context, opts options, svcs *services) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	hub := websocket.NewHub()
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	startBackgroundRoutines(ctx, svcs, hub, &wg)

	addr := opts.addr()
	apiServer := newAPIServer(opts, svcs, hub)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newRootHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	if opts.ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, handler)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Println("Server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, opts options, handler http.Handler) {
	if opts.ngrokAuth == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Printf("Using custom ngrok domain: %s", opts.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx,
		tunnel,
		ngrok.WithAuthtoken(opts.ngrokAuth),
	)
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// tickRoutine pushes the elapsed game time to every session with a
// connected WebSocket client. Won games stop ticking.
func tickRoutine(ctx context.Context, gameService service.GameService, hub *websocket.Hub, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			broadcastTicks(ctx, gameService, hub)
		}
	}
}

func broadcastTicks(ctx context.Context, gameService service.GameService, hub *websocket.Hub) {
	for _, sessionID := range hub.ActiveSessions() {
		state, err := gameService.GetGameState(ctx, sessionID)
		if err != nil || state.Won {
			continue
		}
		hub.BroadcastTick(sessionID, time.Duration(state.ElapsedSeconds)*time.Second)
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at opts.externalURL; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, opts options, svcs *services) error {
	baseURL := opts.externalURL

	log.Printf("Checking for external API server at %s...", baseURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		// No external server found, start internal one
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run(ctx)

		var wg sync.WaitGroup
		startBackgroundRoutines(ctx, svcs, hub, &wg)

		httpServer := &http.Server{
			Handler: newAPIServer(opts, svcs, hub),
		}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	// Stdout carries the protocol; operation logs printed by the internal
	// server go to stderr instead
	protocolOut := os.Stdout
	os.Stdout = os.Stderr

	stdio := server.NewStdioServer(mcpClient.GetMCPServer())
	if err := stdio.Listen(ctx, os.Stdin, protocolOut); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
