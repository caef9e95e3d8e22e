// Package mcpserver exposes the conversation engine as an MCP server, so
// agent hosts can drive threads as tools and read the dialog graph as a
// resource. It serves over stdio or SSE.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rigmate/rigmate"
	"github.com/rigmate/rigmate/internal/graph"
	"github.com/rigmate/rigmate/internal/logging"
	"github.com/rigmate/rigmate/internal/presentation/mermaid"
	"github.com/rigmate/rigmate/internal/sanitize"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
)

// ChatResponse is the structured result of the chat tool.
type ChatResponse struct {
	ThreadID string `json:"thread_id" jsonschema_description:"The conversation thread the turn ran on. Pass it back to continue the conversation."`
	Reply    string `json:"reply" jsonschema_description:"The assistant's reply to the message."`
}

// ThreadList is the structured result of the list_threads tool.
type ThreadList struct {
	Threads []string `json:"threads" jsonschema_description:"IDs of all stored conversation threads."`
}

// DeleteResult is the structured result of the delete_thread tool.
type DeleteResult struct {
	ThreadID string `json:"thread_id" jsonschema_description:"The thread that was deleted."`
}

// Server wraps the conversation engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.ChatEngine
	logger    *slog.Logger
	maxInput  int
	mcpServer *server.MCPServer
}

// Option configures the MCP server.
type Option func(*Server)

// WithLogger sets the server logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize overrides the chat message size limit in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInput = n
	}
}

// NewServer creates a new MCP Server instance around the engine.
func NewServer(engine ports.ChatEngine, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		maxInput: sanitize.DefaultMaxInputSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.mcpServer = server.NewMCPServer("rigmate-mcp", rigmate.Version)
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and blocks until
// the context is canceled or the listener fails.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: chat
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send a message to the PC building assistant. Omit thread_id to start a new conversation; pass the returned thread_id to continue it."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user message")),
		mcp.WithString("thread_id", mcp.Description("Conversation thread to continue (optional)")),
		mcp.WithOutputSchema[ChatResponse](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	// TOOL: list_threads
	listTool := mcp.NewTool("list_threads",
		mcp.WithDescription("List the IDs of all stored conversation threads."),
		mcp.WithOutputSchema[ThreadList](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListThreads))

	// TOOL: inspect_thread
	inspectTool := mcp.NewTool("inspect_thread",
		mcp.WithDescription("Inspect one conversation thread: full history, dialog stack and the pending node if a turn was interrupted."),
		mcp.WithString("thread_id", mcp.Required(), mcp.Description("Thread to inspect")),
		mcp.WithOutputSchema[dialog.Checkpoint](),
	)
	s.mcpServer.AddTool(inspectTool, mcp.NewStructuredToolHandler(s.handleInspectThread))

	// TOOL: delete_thread
	deleteTool := mcp.NewTool("delete_thread",
		mcp.WithDescription("Delete a conversation thread and its checkpoint."),
		mcp.WithString("thread_id", mcp.Required(), mcp.Description("Thread to delete")),
		mcp.WithOutputSchema[DeleteResult](),
	)
	s.mcpServer.AddTool(deleteTool, mcp.NewStructuredToolHandler(s.handleDeleteThread))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the dialog routing graph as a JSON edge list for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(graphEdges())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ChatResponse, error) {
	message, _ := args["message"].(string)
	if message == "" {
		return ChatResponse{}, fmt.Errorf("message is required")
	}

	clean, err := sanitize.Input(message, s.maxInput)
	if err != nil {
		s.logger.Warn("MCP Chat: Input rejected", "err", err, "size", len(message))
		return ChatResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	threadID, _ := args["thread_id"].(string)
	if threadID == "" {
		threadID = uuid.NewString()
	}

	reply, err := s.runTurn(ctx, threadID, clean)
	if err != nil {
		s.logger.Error("MCP Chat: Turn failed", "thread_id", threadID, "err", err)
		return ChatResponse{}, fmt.Errorf("chat failed: %w", err)
	}

	return ChatResponse{ThreadID: threadID, Reply: reply}, nil
}

// runTurn streams the message through the graph and resumes until nothing
// is pending.
func (s *Server) runTurn(ctx context.Context, threadID, message string) (string, error) {
	stream, err := s.engine.Stream(ctx, threadID, message)
	if err != nil {
		return "", err
	}
	reply, pending, err := drain(ctx, stream)
	if err != nil {
		return "", err
	}
	for pending {
		stream, err = s.engine.Resume(ctx, threadID)
		if err != nil {
			return "", err
		}
		if reply, pending, err = drain(ctx, stream); err != nil {
			return "", err
		}
	}
	return reply, nil
}

func drain(ctx context.Context, stream ports.TurnStream) (reply string, pending bool, err error) {
	defer stream.Close()

	for stream.Next(ctx) {
		reply = stream.State().LastReply()
	}
	if err := stream.Err(); err != nil {
		return "", false, err
	}
	return reply, stream.Pending(), nil
}

func (s *Server) handleListThreads(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ThreadList, error) {
	ids, err := s.engine.Threads(ctx)
	if err != nil {
		return ThreadList{}, fmt.Errorf("list failed: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ThreadList{Threads: ids}, nil
}

func (s *Server) handleInspectThread(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (dialog.Checkpoint, error) {
	threadID, _ := args["thread_id"].(string)
	if threadID == "" {
		return dialog.Checkpoint{}, fmt.Errorf("thread_id is required")
	}
	cp, err := s.engine.Thread(ctx, threadID)
	if err != nil {
		return dialog.Checkpoint{}, fmt.Errorf("inspect failed: %w", err)
	}
	return *cp, nil
}

func (s *Server) handleDeleteThread(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DeleteResult, error) {
	threadID, _ := args["thread_id"].(string)
	if threadID == "" {
		return DeleteResult{}, fmt.Errorf("thread_id is required")
	}
	if err := s.engine.DeleteThread(ctx, threadID); err != nil {
		return DeleteResult{}, fmt.Errorf("delete failed: %w", err)
	}
	return DeleteResult{ThreadID: threadID}, nil
}

// graphEdge is the JSON shape of one routing table entry.
type graphEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

func graphEdges() []graphEdge {
	edges := graph.Transitions()
	out := make([]graphEdge, len(edges))
	for i, e := range edges {
		out[i] = graphEdge{From: string(e.From), To: string(e.To), Label: e.Label}
	}
	return out
}

func (s *Server) registerResources() {
	// EXPOSE: rigmate://graph
	s.mcpServer.AddResource(mcp.NewResource("rigmate://graph", "Dialog Routing Graph",
		mcp.WithMIMEType("text/plain"),
	), s.readGraphResource)
}

// readGraphResource renders the routing table as a Mermaid flowchart, a
// compact form agent hosts can show or feed to a model.
func (s *Server) readGraphResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "rigmate://graph",
			MIMEType: "text/plain",
			Text:     mermaid.Render(graph.Transitions(), nil),
		},
	}, nil
}
