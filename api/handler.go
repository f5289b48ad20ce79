package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/gatechain/pkg/gatechain"
)

// Handler serves the demo messaging endpoints sitting behind the pipeline.
// Messages live in memory; durable persistence belongs to the real API this
// pipeline fronts, not to this package.
type Handler struct {
	mu       sync.Mutex
	messages []Message
	nextID   int
}

// Message is a single posted message.
type Message struct {
	ID             int       `json:"id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Sender         string    `json:"sender"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
}

// CreateMessageRequest is the body of POST /api/messages.
type CreateMessageRequest struct {
	Body string `json:"body"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates a new messaging API handler.
func NewHandler() *Handler {
	return &Handler{nextID: 1}
}

// Messages handles /api/messages and /api/conversations/{id}/messages.
// GET lists, POST creates. By the time a POST arrives here the pipeline has
// already logged it, checked the clock window, charged the rate limit and
// verified the caller's role.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listMessages(w, r)
	case http.MethodPost:
		h.createMessage(w, r)
	default:
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	conversation := conversationID(r.URL.Path)

	h.mu.Lock()
	out := make([]Message, 0, len(h.messages))
	for _, m := range h.messages {
		if conversation == "" || m.ConversationID == conversation {
			out = append(out, m)
		}
	}
	h.mu.Unlock()

	h.sendJSON(w, http.StatusOK, out)
}

func (h *Handler) createMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Body == "" {
		h.sendError(w, http.StatusBadRequest, "Message body is required")
		return
	}

	sender := "Anonymous"
	if p, ok := gatechain.PrincipalFrom(r.Context()); ok {
		sender = p.DisplayName()
	}

	h.mu.Lock()
	msg := Message{
		ID:             h.nextID,
		ConversationID: conversationID(r.URL.Path),
		Sender:         sender,
		Body:           req.Body,
		SentAt:         time.Now(),
	}
	h.nextID++
	h.messages = append(h.messages, msg)
	h.mu.Unlock()

	h.sendJSON(w, http.StatusCreated, msg)
}

// conversationID extracts the conversation segment from a nested messages
// path like /api/conversations/7/messages. Top-level /api/messages has none.
func conversationID(path string) string {
	const marker = "/conversations/"
	idx := strings.Index(path, marker)
	if idx < 0 {
		return ""
	}
	rest := path[idx+len(marker):]
	if end := strings.Index(rest, "/"); end >= 0 {
		return rest[:end]
	}
	return rest
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{Error: message})
}
