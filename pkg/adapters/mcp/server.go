package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/daymxn/story"
	"github.com/daymxn/story/internal/logging"
	"github.com/daymxn/story/internal/presentation/graph"
	"github.com/daymxn/story/pkg/scene"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const treeURI = "story://tree"

// Simulator is the scene surface the MCP server drives.
type Simulator interface {
	Apply(step scene.Step) error
	Next() (bool, error)
	Snapshot() scene.Snapshot
	Trace() []scene.TraceEntry
}

// StepArgs are the arguments of the apply_step tool.
type StepArgs struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

// NextResponse is the result of the next_step tool.
type NextResponse struct {
	Applied  bool           `json:"applied" jsonschema_description:"False once the script is exhausted"`
	Snapshot scene.Snapshot `json:"snapshot" jsonschema_description:"State after the step"`
}

// Server wraps a running scene and exposes it as an MCP Server.
type Server struct {
	sim       Simulator
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sim Simulator, opts ...Option) *Server {
	s := &Server{
		sim:       sim,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("story-mcp", story.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: render_tree
	s.mcpServer.AddTool(mcp.NewTool("render_tree",
		mcp.WithDescription("Render the current host and story trees."),
		mcp.WithOutputSchema[scene.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleRenderTree))

	// TOOL: apply_step
	s.mcpServer.AddTool(mcp.NewTool("apply_step",
		mcp.WithDescription("Destroy a host, or draw, redraw or destroy a story."),
		mcp.WithString("action", mcp.Required(),
			mcp.Description("Step action"),
			mcp.Enum(string(scene.ActionDestroyHost), string(scene.ActionDestroyStory), string(scene.ActionRedraw), string(scene.ActionDraw)),
		),
		mcp.WithString("target", mcp.Required(), mcp.Description("Host path (destroy-host) or story name")),
		mcp.WithOutputSchema[scene.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleApplyStep))

	// TOOL: next_step
	s.mcpServer.AddTool(mcp.NewTool("next_step",
		mcp.WithDescription("Apply the next scripted step of the scene."),
		mcp.WithOutputSchema[NextResponse](),
	), mcp.NewStructuredToolHandler(s.handleNextStep))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get a Mermaid diagram of the host and story trees."),
	), s.handleGetGraph)

	// TOOL: get_trace
	s.mcpServer.AddTool(mcp.NewTool("get_trace",
		mcp.WithDescription("Get every lifecycle event recorded so far."),
	), s.handleGetTrace)
}

func (s *Server) handleRenderTree(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (scene.Snapshot, error) {
	return s.sim.Snapshot(), nil
}

func (s *Server) handleApplyStep(ctx context.Context, request mcp.CallToolRequest, args StepArgs) (scene.Snapshot, error) {
	action, err := scene.ParseAction(args.Action)
	if err != nil {
		return scene.Snapshot{}, err
	}
	step := scene.Step{Action: action, Target: args.Target}
	if err := s.sim.Apply(step); err != nil {
		s.logger.Warn("MCP apply_step rejected", "step", step.String(), "error", err)
		return scene.Snapshot{}, fmt.Errorf("apply %s: %w", step, err)
	}
	s.logger.Info("step applied", "step", step.String())
	return s.sim.Snapshot(), nil
}

func (s *Server) handleNextStep(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (NextResponse, error) {
	applied, err := s.sim.Next()
	if err != nil {
		return NextResponse{}, err
	}
	return NextResponse{Applied: applied, Snapshot: s.sim.Snapshot()}, nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(graph.GenerateMermaid(s.sim.Snapshot())), nil
}

func (s *Server) handleGetTrace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.sim.Trace())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode trace: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: story://tree
	s.mcpServer.AddResource(mcp.NewResource(treeURI, "Current Lifecycle Tree",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.sim.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode tree: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      treeURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
