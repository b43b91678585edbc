// Package server exposes the agent over HTTP: a synchronous chat endpoint
// that runs one turn per request, and an SSE stream of agent events for
// clients that render progress live.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/travelweaver/weaver/pkg/agent"
	"github.com/travelweaver/weaver/pkg/logging"
	"github.com/travelweaver/weaver/pkg/types"
)

// maxRequestBodySize caps chat request bodies at 1MB.
const maxRequestBodySize = 1 << 20

// keepaliveInterval paces SSE ping events so proxies keep idle streams open.
const keepaliveInterval = 10 * time.Second

// ChatRequest is the body of POST /api/agent/chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the reply to a chat request: the turn outcome plus the
// full updated conversation, so stateless clients can rerender from scratch.
type ChatResponse struct {
	SessionID        string           `json:"session_id"`
	Content          string           `json:"content"`
	PaymentCompleted bool             `json:"payment_completed"`
	Conversation     []*types.Message `json:"conversation"`
}

// eventPayload is the wire shape of an agent event on the SSE stream.
type eventPayload struct {
	Type     types.AgentEventType   `json:"type"`
	Content  string                 `json:"content,omitempty"`
	ToolName string                 `json:"tool_name,omitempty"`
	Reason   string                 `json:"reason,omitempty"`
	Error    string                 `json:"error,omitempty"`
	IsBusy   bool                   `json:"is_busy,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func toPayload(event *types.AgentEvent) eventPayload {
	p := eventPayload{
		Type:     event.Type,
		Content:  event.Content,
		ToolName: event.ToolName,
		Reason:   event.Reason,
		IsBusy:   event.IsBusy,
	}
	if event.Error != nil {
		p.Error = event.Error.Error()
	}
	if len(event.Metadata) > 0 {
		p.Metadata = event.Metadata
	}
	return p
}

// Handler serves the agent HTTP API.
type Handler struct {
	manager     *agent.Manager
	broadcaster *Broadcaster
	rateLimiter *RateLimiter
	logger      *logging.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithRateLimit throttles chat requests per session.
func WithRateLimit(perMinute int) HandlerOption {
	return func(h *Handler) {
		h.rateLimiter = NewRateLimiter(perMinute, time.Minute)
	}
}

// WithServerLogger attaches a component logger.
func WithServerLogger(logger *logging.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a handler over the session manager and broadcaster.
// Session factories should wire broadcaster.SinkFor(id) as each session's
// event sink so the stream endpoint sees turn events.
func NewHandler(manager *agent.Manager, broadcaster *Broadcaster, opts ...HandlerOption) *Handler {
	h := &Handler{
		manager:     manager,
		broadcaster: broadcaster,
		rateLimiter: NewRateLimiter(0, time.Minute),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the chi router with standard middleware.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api/agent", func(r chi.Router) {
		r.Post("/chat", h.HandleChat)
		r.Get("/stream", h.HandleStream)
		r.Get("/history", h.HandleHistory)
	})
	r.Get("/healthz", h.HandleHealth)
	return r
}

// HandleChat runs one agent turn synchronously and returns the result.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if !h.rateLimiter.Allow(req.SessionID) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	h.infof("chat request session=%s message_length=%d", req.SessionID, len(req.Message))

	session := h.manager.Get(req.SessionID)
	result := session.Turn(r.Context(), req.Message)

	writeJSON(w, http.StatusOK, ChatResponse{
		SessionID:        req.SessionID,
		Content:          result.Content,
		PaymentCompleted: result.PaymentCompleted,
		Conversation:     session.History(),
	})
}

// HandleHistory returns the session's conversation so far.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	session := h.manager.Get(sessionID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":   sessionID,
		"conversation": session.History(),
	})
}

// HandleStream serves the SSE feed of agent events for a session.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	subID, events := h.broadcaster.Subscribe(sessionID)
	defer h.broadcaster.Unsubscribe(sessionID, subID)

	if err := writeSSE(w, "connected", fmt.Sprintf(`{"session_id":%q}`, sessionID)); err != nil {
		return
	}
	flusher.Flush()

	h.infof("stream connected session=%s", sessionID)

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.infof("stream disconnected session=%s", sessionID)
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(toPayload(event))
			if err != nil {
				h.warnf("failed to marshal event: %v", err)
				continue
			}
			if err := writeSSE(w, "agent_event", string(data)); err != nil {
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if err := writeSSE(w, "ping", `{"status":"alive"}`); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeSSE(w http.ResponseWriter, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) infof(format string, v ...interface{}) {
	if h.logger != nil {
		h.logger.Infof(format, v...)
	}
}

func (h *Handler) warnf(format string, v ...interface{}) {
	if h.logger != nil {
		h.logger.Warnf(format, v...)
	}
}
