package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/phdev/briefing/internal/logging"
	"github.com/phdev/briefing/internal/presentation/graph"
	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/flow"
	"github.com/phdev/briefing/pkg/ports"
	"github.com/phdev/briefing/pkg/wizard"
)

const (
	GraphURI    = "briefing://graph"
	PackagesURI = "briefing://packages"

	// DefaultSettleTimeout bounds how long a tool waits for the bot to finish
	// typing before returning the view as it is.
	DefaultSettleTimeout = 10 * time.Second
)

// Server exposes a Conversation as MCP tools. Tools wait for timed
// transitions to settle so an agent always gets a view it can act on.
type Server struct {
	conv      ports.Conversation
	table     *flow.Table
	logger    *slog.Logger
	settle    time.Duration
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSettleTimeout sets how long tools wait for a suspended session. Zero
// returns immediately.
func WithSettleTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.settle = d
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(conv ports.Conversation, table *flow.Table, version string, opts ...Option) *Server {
	s := &Server{
		conv:      conv,
		table:     table,
		logger:    logging.NewNop(),
		settle:    DefaultSettleTimeout,
		mcpServer: server.NewMCPServer("briefing-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

type startArgs struct {
	Package string `json:"package"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type textArgs struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type valueArgs struct {
	SessionID string `json:"session_id"`
	Value     string `json:"value"`
}

type controlArgs struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
}

func (s *Server) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by briefing_start"))

	s.mcpServer.AddTool(mcp.NewTool("briefing_start",
		mcp.WithDescription("Open a briefing session. Optionally seed it with a package title or id."),
		mcp.WithString("package", mcp.Description("Package title or catalog id (optional)")),
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("briefing_view",
		mcp.WithDescription("Get the current view of a session."),
		sessionID,
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handleView))

	s.mcpServer.AddTool(mcp.NewTool("briefing_answer",
		mcp.WithDescription("Answer a text-input step."),
		sessionID,
		mcp.WithString("text", mcp.Required(), mcp.Description("The visitor's answer")),
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handleAnswer))

	s.mcpServer.AddTool(mcp.NewTool("briefing_select",
		mcp.WithDescription("Pick an option of the live turn by value."),
		sessionID,
		mcp.WithString("value", mcp.Required(), mcp.Description("Option value")),
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handleSelect))

	s.mcpServer.AddTool(mcp.NewTool("briefing_toggle",
		mcp.WithDescription("Toggle a checklist entry of a multi-choice step."),
		sessionID,
		mcp.WithString("value", mcp.Required(), mcp.Description("Option value")),
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handleToggle))

	s.mcpServer.AddTool(mcp.NewTool("briefing_confirm",
		mcp.WithDescription("Confirm the checklist selection."),
		sessionID,
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handleConfirm))

	s.mcpServer.AddTool(mcp.NewTool("briefing_control",
		mcp.WithDescription("Restart, review, finish, or answer a correction prompt."),
		sessionID,
		mcp.WithString("action", mcp.Required(),
			mcp.Enum(string(domain.ControlRestart), string(domain.ControlReview), string(domain.ControlFinish), string(domain.ControlAccept), string(domain.ControlRetype)),
		),
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handleControl))
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args startArgs) (domain.View, error) {
	view, err := s.conv.Start(ctx, domain.Seed{ProjectType: args.Package})
	return s.settled(ctx, view, err)
}

func (s *Server) handleView(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (domain.View, error) {
	view, err := s.conv.View(ctx, args.SessionID)
	return s.settled(ctx, view, err)
}

func (s *Server) handleAnswer(ctx context.Context, _ mcp.CallToolRequest, args textArgs) (domain.View, error) {
	view, err := s.conv.SubmitText(ctx, args.SessionID, args.Text)
	return s.settled(ctx, view, err)
}

func (s *Server) handleSelect(ctx context.Context, _ mcp.CallToolRequest, args valueArgs) (domain.View, error) {
	view, err := s.conv.SelectOption(ctx, args.SessionID, args.Value)
	return s.settled(ctx, view, err)
}

func (s *Server) handleToggle(ctx context.Context, _ mcp.CallToolRequest, args valueArgs) (domain.View, error) {
	view, err := s.conv.Toggle(ctx, args.SessionID, args.Value)
	return s.settled(ctx, view, err)
}

func (s *Server) handleConfirm(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (domain.View, error) {
	view, err := s.conv.Confirm(ctx, args.SessionID)
	return s.settled(ctx, view, err)
}

func (s *Server) handleControl(ctx context.Context, _ mcp.CallToolRequest, args controlArgs) (domain.View, error) {
	c, err := domain.ParseControl(args.Action)
	if err != nil {
		return domain.View{}, err
	}
	view, err := s.conv.Control(ctx, args.SessionID, c)
	return s.settled(ctx, view, err)
}

// settled waits until the session leaves its typing or presenting phase,
// or the settle timeout passes, and returns the latest view.
func (s *Server) settled(ctx context.Context, view domain.View, err error) (domain.View, error) {
	if err != nil {
		s.logger.DebugContext(ctx, "MCP tool failed", "session_id", view.SessionID, "err", err)
		return domain.View{}, err
	}
	if !view.Phase.Suspended() || s.settle <= 0 {
		return view, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.settle)
	defer cancel()

	views, unsubscribe, err := s.conv.Subscribe(ctx, view.SessionID)
	if err != nil {
		return domain.View{}, err
	}
	defer unsubscribe()

	// The transition may have happened before the subscription.
	if view, err = s.conv.View(ctx, view.SessionID); err != nil || !view.Phase.Suspended() {
		return view, err
	}

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				s.logger.Warn("MCP tool returned before the session settled", "session_id", view.SessionID)
				return view, nil
			}
			return domain.View{}, ctx.Err()
		case next, ok := <-views:
			if !ok {
				return view, nil
			}
			view = next
			if !view.Phase.Suspended() {
				return view, nil
			}
		}
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Conversation flow",
		mcp.WithResourceDescription("Mermaid flowchart of the briefing steps."),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.table, nil),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(PackagesURI, "Package catalog",
		mcp.WithResourceDescription("Packages a session can be seeded with."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(wizard.Packages())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      PackagesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
