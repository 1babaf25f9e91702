package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/auth"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
	"github.com/gfinemax/worklog-mcr-sub000/internal/handler/http/response"
	worklogservice "github.com/gfinemax/worklog-mcr-sub000/internal/service/worklog"
	"github.com/go-chi/chi/v5"
)

type WorklogHandler interface {
	Ensure(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	SaveWorkers(w http.ResponseWriter, r *http.Request)
	SaveChannelLogs(w http.ResponseWriter, r *http.Request)
	Autosave(w http.ResponseWriter, r *http.Request)
	Sign(w http.ResponseWriter, r *http.Request)
	RemoveSignature(w http.ResponseWriter, r *http.Request)
}

type worklogHandlerImpl struct {
	worklogService worklog.LifecycleService
	authService    auth.AuthService
	autosaver      *worklogservice.Autosaver
}

func NewWorklogHandler(worklogService worklog.LifecycleService, authService auth.AuthService, autosaver *worklogservice.Autosaver) WorklogHandler {
	return &worklogHandlerImpl{
		worklogService: worklogService,
		authService:    authService,
		autosaver:      autosaver,
	}
}

// Ensure implements WorklogHandler. Creating a record that already exists
// redirects to it, so the console can always POST on shift start.
func (h *worklogHandlerImpl) Ensure(w http.ResponseWriter, r *http.Request) {
	var req worklog.EnsureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	// Auto-creation is the cron job's prerogative
	req.IsAutoCreated = false

	result, err := h.worklogService.EnsureWorklog(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Worklog ready", worklog.NewResponse(result))
}

// Get implements WorklogHandler.
func (h *worklogHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.worklogService.GetWorklog(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, worklog.NewResponse(result))
}

// List implements WorklogHandler.
func (h *worklogHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := worklog.Filter{}

	if group := r.URL.Query().Get("group_name"); group != "" {
		filter.GroupName = group
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			response.HandleError(w, worklog.ErrInvalidDateFormat)
			return
		}
		filter.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			response.HandleError(w, worklog.ErrInvalidDateFormat)
			return
		}
		filter.To = &t
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	logs, total, err := h.worklogService.ListWorklogs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := make([]worklog.Response, 0, len(logs))
	for _, log := range logs {
		items = append(items, worklog.NewResponse(log))
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	response.SuccessWithMeta(w, items, &response.Meta{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// SaveWorkers implements WorklogHandler.
func (h *worklogHandlerImpl) SaveWorkers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var workers worklog.Workers
	if err := json.NewDecoder(r.Body).Decode(&workers); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.worklogService.SaveWorkers(r.Context(), id, workers); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Workers saved", nil)
}

// SaveChannelLogs implements WorklogHandler.
func (h *worklogHandlerImpl) SaveChannelLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req worklog.SaveChannelLogsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.worklogService.SaveChannelLogs(r.Context(), id, req.ChannelLogs, req.SystemIssues); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Channel logs saved", nil)
}

type autosaveRequest struct {
	Workers      *worklog.Workers              `json:"workers"`
	ChannelLogs  map[string]worklog.ChannelLog `json:"channel_logs"`
	SystemIssues []worklog.SystemIssue         `json:"system_issues"`
}

// Autosave implements WorklogHandler. Edits are queued and debounced so the
// console can fire on every keystroke without hammering the database.
func (h *worklogHandlerImpl) Autosave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req autosaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	if req.Workers != nil {
		h.autosaver.QueueWorkers(id, *req.Workers)
	}
	if req.ChannelLogs != nil || req.SystemIssues != nil {
		h.autosaver.QueueChannelLogs(id, req.ChannelLogs, req.SystemIssues)
	}

	response.SuccessWithMessage(w, "Autosave queued", nil)
}

type signRequest struct {
	Role string `json:"role"`
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

// Sign implements WorklogHandler. The actor is PIN-confirmed per action
// because the console session belongs to the whole team.
func (h *worklogHandlerImpl) Sign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	if err := (&worklog.SignRequest{Role: req.Role}).Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	actor, err := h.authService.ConfirmPIN(r.Context(), auth.ConfirmPINRequest{Name: req.Name, PIN: req.PIN})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.worklogService.Sign(r.Context(), id, worklog.SignatureRole(req.Role), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Signature recorded", worklog.NewResponse(result))
}

// RemoveSignature implements WorklogHandler.
func (h *worklogHandlerImpl) RemoveSignature(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	role := chi.URLParam(r, "role")

	var req auth.ConfirmPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	if err := (&worklog.SignRequest{Role: role}).Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	actor, err := h.authService.ConfirmPIN(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.worklogService.RemoveSignature(r.Context(), id, worklog.SignatureRole(role), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Signature removed", worklog.NewResponse(result))
}
