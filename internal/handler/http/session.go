package http

import (
	"encoding/json"
	"net/http"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/auth"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
	"github.com/gfinemax/worklog-mcr-sub000/internal/handler/http/response"
	worklogservice "github.com/gfinemax/worklog-mcr-sub000/internal/service/worklog"
)

type SessionHandler interface {
	State(w http.ResponseWriter, r *http.Request)
	StageNext(w http.ResponseWriter, r *http.Request)
	CompleteHandover(w http.ResponseWriter, r *http.Request)
	CancelHandover(w http.ResponseWriter, r *http.Request)
}

type sessionHandlerImpl struct {
	authService    auth.AuthService
	worklogService worklog.LifecycleService
	autosaver      *worklogservice.Autosaver
}

func NewSessionHandler(authService auth.AuthService, worklogService worklog.LifecycleService, autosaver *worklogservice.Autosaver) SessionHandler {
	return &sessionHandlerImpl{
		authService:    authService,
		worklogService: worklogService,
		autosaver:      autosaver,
	}
}

// State implements SessionHandler.
func (h *sessionHandlerImpl) State(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.authService.SessionState(r.Context()))
}

// StageNext implements SessionHandler.
func (h *sessionHandlerImpl) StageNext(w http.ResponseWriter, r *http.Request) {
	staged, err := h.authService.StageNextSession(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Next session staged", auth.NewSessionResponse(staged))
}

// CompleteHandover implements SessionHandler. The actor is PIN-confirmed and
// pending autosaves are flushed so the outgoing team's last edits land before
// the session changes hands.
func (h *sessionHandlerImpl) CompleteHandover(w http.ResponseWriter, r *http.Request) {
	var req auth.ConfirmPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	actor, err := h.authService.ConfirmPIN(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.autosaver.Flush(r.Context())

	if err := h.worklogService.PromoteNextSession(r.Context(), actor); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Handover completed", h.authService.SessionState(r.Context()))
}

// CancelHandover implements SessionHandler.
func (h *sessionHandlerImpl) CancelHandover(w http.ResponseWriter, r *http.Request) {
	var req auth.ConfirmPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	actor, err := h.authService.ConfirmPIN(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.autosaver.Flush(r.Context())

	if err := h.worklogService.CancelHandover(r.Context(), actor); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Handover cancelled", h.authService.SessionState(r.Context()))
}
