package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/numberduel-go/internal/api/response"
	"github.com/mcoot/numberduel-go/internal/model"
	"github.com/mcoot/numberduel-go/internal/services/session"
)

// SessionHandler handles session-related endpoints
type SessionHandler struct {
	sessionController session.ControllerInterface
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionController session.ControllerInterface) *SessionHandler {
	return &SessionHandler{
		sessionController: sessionController,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionController.CreateSession(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(sess))
}

// Get handles GET /api/v1/sessions/{session_id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["session_id"])

	sess, err := h.sessionController.GetSession(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(sess))
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.sessionController.ListSessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionListFromModel(summaries))
}
