package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Rrens/health-insights/internal/api/middleware"
	"github.com/Rrens/health-insights/internal/api/response"
	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/service"
)

// SessionHandler handles conversation session endpoints
type SessionHandler struct {
	conversationService *service.ConversationService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(conversationService *service.ConversationService) *SessionHandler {
	return &SessionHandler{conversationService: conversationService}
}

// List returns the caller's sessions, most recent first, and the selected one
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	sessions, err := h.conversationService.ListSessions(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	var current *uuid.UUID
	if state, ok := middleware.GetState(r.Context()); ok && state.HasCurrentSession() {
		current = &state.CurrentSessionID
	}

	response.OK(w, map[string]any{
		"sessions":           sessions,
		"current_session_id": current,
	})
}

// Create opens a session and selects it
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	// The body is optional
	var input service.CreateSessionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, domain.NewValidationError("body", "must be valid JSON"))
		return
	}

	session, err := h.conversationService.CreateSession(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, session)
}

// Select makes a session the current one
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionParams(w, r)
	if !ok {
		return
	}

	session, err := h.conversationService.SelectSession(r.Context(), userID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, session)
}

// Messages returns a session's messages, oldest first
func (h *SessionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionParams(w, r)
	if !ok {
		return
	}

	messages, err := h.conversationService.Messages(r.Context(), userID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, messages)
}

// Delete removes a session together with its messages
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionParams(w, r)
	if !ok {
		return
	}

	if err := h.conversationService.DeleteSession(r.Context(), userID, sessionID); err != nil {
		writeError(w, err)
		return
	}

	response.NoContent(w)
}

func sessionParams(w http.ResponseWriter, r *http.Request) (userID, sessionID uuid.UUID, ok bool) {
	userID, ok = middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, sessionID, true
}
