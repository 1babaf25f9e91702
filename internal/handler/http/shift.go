package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/shift"
	"github.com/gfinemax/worklog-mcr-sub000/internal/handler/http/response"
)

type ShiftHandler interface {
	Today(w http.ResponseWriter, r *http.Request)
	Range(w http.ResponseWriter, r *http.Request)
	Members(w http.ResponseWriter, r *http.Request)
	CreateConfig(w http.ResponseWriter, r *http.Request)
	ListConfigs(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
	location     *time.Location
}

func NewShiftHandler(shiftService shift.ShiftService, location *time.Location) ShiftHandler {
	return &shiftHandlerImpl{
		shiftService: shiftService,
		location:     location,
	}
}

// Today implements ShiftHandler. Resolves the logical shift for the current
// instant, so just after midnight this still reports the previous day's
// night shift.
func (h *shiftHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	info := h.shiftService.LogicalShiftInfo(time.Now().In(h.location))

	config, err := h.shiftService.ActiveConfig(r.Context(), info.Date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	teams, ok := h.shiftService.TeamsForDate(info.Date, config)
	if !ok {
		response.HandleError(w, shift.ErrNoActiveConfig)
		return
	}

	onDuty := teams.Day
	if info.Type == shift.ShiftTypeNight {
		onDuty = teams.Night
	}

	response.Success(w, map[string]interface{}{
		"date":       info.Date.Format("2006-01-02"),
		"shift_type": info.Type,
		"label":      info.Type.Label(),
		"team":       onDuty,
		"day_team":   teams.Day,
		"night_team": teams.Night,
	})
}

// Range implements ShiftHandler. Preview endpoint for the rotation calendar.
func (h *shiftHandlerImpl) Range(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if team == "" {
		response.HandleError(w, shift.ErrTeamRequired)
		return
	}

	start, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("start"), h.location)
	if err != nil {
		response.HandleError(w, shift.ErrInvalidDateFormat)
		return
	}
	end, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("end"), h.location)
	if err != nil {
		response.HandleError(w, shift.ErrInvalidDateFormat)
		return
	}
	if end.Before(start) {
		response.HandleError(w, shift.ErrInvalidDateFormat)
		return
	}

	config, err := h.shiftService.ActiveConfig(r.Context(), start)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	infos := h.shiftService.CalculateShiftRange(start, end, team, config)
	items := make([]shift.InfoResponse, 0, len(infos))
	for _, info := range infos {
		items = append(items, shift.NewInfoResponse(info))
	}

	response.Success(w, items)
}

// Members implements ShiftHandler.
func (h *shiftHandlerImpl) Members(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if team == "" {
		response.HandleError(w, shift.ErrTeamRequired)
		return
	}

	date := time.Now().In(h.location)
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, h.location)
		if err != nil {
			response.HandleError(w, shift.ErrInvalidDateFormat)
			return
		}
		date = parsed
	}

	config, err := h.shiftService.ActiveConfig(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	members, err := h.shiftService.MembersWithRoles(r.Context(), team, date, config)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, members)
}

// CreateConfig implements ShiftHandler.
func (h *shiftHandlerImpl) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var req shift.CreateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.shiftService.CreateConfig(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift configuration created", shift.NewConfigResponse(created))
}

// ListConfigs implements ShiftHandler.
func (h *shiftHandlerImpl) ListConfigs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	configs, err := h.shiftService.ListConfigs(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := make([]shift.ConfigResponse, 0, len(configs))
	for _, c := range configs {
		items = append(items, shift.NewConfigResponse(c))
	}

	response.Success(w, items)
}
