// Package httpapi exposes the conversation engine over a JSON/SSE HTTP
// surface: one-shot chat turns, thread administration, live node events
// and the dialog graph.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rigmate/rigmate"
	"github.com/rigmate/rigmate/internal/graph"
	"github.com/rigmate/rigmate/internal/logging"
	"github.com/rigmate/rigmate/internal/metrics"
	"github.com/rigmate/rigmate/internal/presentation/mermaid"
	"github.com/rigmate/rigmate/internal/sanitize"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
)

// Server holds the handler state. Handlers are methods so tests can drive
// them through the chi router NewHandler builds.
type Server struct {
	engine   ports.ChatEngine
	streams  *StreamManager
	metrics  *metrics.Collector
	logger   *slog.Logger
	maxInput int
}

// Option configures the HTTP server.
type Option func(*Server)

// WithMetrics mounts the collector's scrape endpoint at /metrics and
// counts every chat turn the API drives.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// WithLogger sets the request logger. The default discards.
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

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine ports.ChatEngine, opts ...Option) http.Handler {
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
	s.streams = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat", s.PostChat)
		r.Get("/graph", s.GetGraph)
		r.Get("/threads", s.ListThreads)
		r.Get("/threads/{threadID}", s.GetThread)
		r.Delete("/threads/{threadID}", s.DeleteThread)
		r.Get("/threads/{threadID}/events", s.SubscribeEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// ChatRequest is the body of POST /v1/chat. An empty ThreadID starts a new
// conversation under a freshly minted ID.
type ChatRequest struct {
	ThreadID string `json:"thread_id,omitempty"`
	Message  string `json:"message"`
}

// ChatResponse carries the assistant's reply for one completed turn.
type ChatResponse struct {
	ThreadID string `json:"thread_id"`
	Reply    string `json:"reply"`
}

// PostChat handles the POST /v1/chat request: it appends the message to
// the thread, drives the turn to completion and returns the reply.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Chat: Invalid request body", "err", err)
		return
	}
	if body.Message == "" {
		http.Error(w, "Field 'message' is required", http.StatusBadRequest)
		return
	}

	message, err := sanitize.Input(body.Message, s.maxInput)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.logger.Warn("Chat: Input rejected", "err", err, "size", len(body.Message))
		return
	}

	threadID := body.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	reply, err := s.runTurn(r.Context(), threadID, message)
	if s.metrics != nil {
		s.metrics.ObserveTurn(err)
	}
	if err != nil {
		// The checkpoint before the failing node survives; the client may
		// retry on the same thread ID.
		http.Error(w, fmt.Sprintf("Chat error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Chat turn failed", "thread_id", threadID, "err", err)
		return
	}

	s.writeJSON(w, http.StatusOK, ChatResponse{ThreadID: threadID, Reply: reply})
}

// runTurn streams the message through the graph and resumes until nothing
// is pending, broadcasting one event per executed node.
func (s *Server) runTurn(ctx context.Context, threadID, message string) (string, error) {
	stream, err := s.engine.Stream(ctx, threadID, message)
	if err != nil {
		return "", err
	}
	reply, pending, err := s.drain(ctx, threadID, stream)
	if err != nil {
		return "", err
	}
	for pending {
		stream, err = s.engine.Resume(ctx, threadID)
		if err != nil {
			return "", err
		}
		if reply, pending, err = s.drain(ctx, threadID, stream); err != nil {
			return "", err
		}
	}
	return reply, nil
}

// ThreadEvent is the SSE payload broadcast after every executed node.
// Reply is set only when the node produced an assistant utterance.
type ThreadEvent struct {
	Node        string         `json:"node"`
	DialogStack []dialog.Skill `json:"dialog_stack,omitempty"`
	Reply       string         `json:"reply,omitempty"`
}

func (s *Server) drain(ctx context.Context, threadID string, stream ports.TurnStream) (reply string, pending bool, err error) {
	defer stream.Close()

	for stream.Next(ctx) {
		st := stream.State()
		ev := ThreadEvent{Node: stream.Node(), DialogStack: st.DialogStack}
		if last, ok := st.LastMessage(); ok && last.Role == dialog.RoleAssistant {
			ev.Reply = last.Text()
		}
		if payload, err := json.Marshal(ev); err == nil {
			s.streams.Broadcast(threadID, string(payload))
		}
		reply = st.LastReply()
	}
	if err := stream.Err(); err != nil {
		return "", false, err
	}
	return reply, stream.Pending(), nil
}

// ListThreads handles the GET /v1/threads request.
func (s *Server) ListThreads(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Threads(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Thread list failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"threads": ids})
}

// GetThread handles the GET /v1/threads/{threadID} request, returning the
// full checkpoint: history, dialog stack and the pending node if any.
func (s *Server) GetThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	cp, err := s.engine.Thread(r.Context(), threadID)
	if err != nil {
		if errors.Is(err, dialog.ErrThreadNotFound) {
			http.Error(w, "Thread not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Thread load failed", "thread_id", threadID, "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, cp)
}

// DeleteThread handles the DELETE /v1/threads/{threadID} request.
func (s *Server) DeleteThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if err := s.engine.DeleteThread(r.Context(), threadID); err != nil {
		if errors.Is(err, dialog.ErrThreadNotFound) {
			http.Error(w, "Thread not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Thread delete failed", "thread_id", threadID, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// graphEdge is the JSON shape of one routing table entry.
type graphEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// GetGraph handles the GET /v1/graph request. The default format is the
// JSON edge list; format=mermaid renders a flowchart, optionally
// highlighting the pending node of the thread given via ?thread=.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	edges := graph.Transitions()

	if r.URL.Query().Get("format") != "mermaid" {
		out := make([]graphEdge, len(edges))
		for i, e := range edges {
			out[i] = graphEdge{From: string(e.From), To: string(e.To), Label: e.Label}
		}
		s.writeJSON(w, http.StatusOK, out)
		return
	}

	var overlay *mermaid.Overlay
	if threadID := r.URL.Query().Get("thread"); threadID != "" {
		cp, err := s.engine.Thread(r.Context(), threadID)
		if err != nil {
			if errors.Is(err, dialog.ErrThreadNotFound) {
				http.Error(w, "Thread not found", http.StatusNotFound)
				return
			}
			http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
			return
		}
		overlay = &mermaid.Overlay{Pending: cp.Next}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, mermaid.Render(edges, overlay))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "rigmate-http",
		"version": rigmate.Version,
	})
}

// SubscribeEvents handles the GET /v1/threads/{threadID}/events request
// (SSE). Each event is one ThreadEvent emitted live while a turn runs on
// the thread. Subscribing before the first message is fine.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	threadID := chi.URLParam(r, "threadID")
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(threadID)
	defer cancel()

	s.logger.Info("SSE: Subscribed to thread events", "thread_id", threadID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "thread_id", threadID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
