package worklog

import (
	"fmt"
	"strings"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/validator"
)

type EnsureRequest struct {
	Date          string  `json:"date"`
	GroupName     string  `json:"group_name"`
	Type          string  `json:"type"`
	Workers       Workers `json:"workers"`
	IsAutoCreated bool    `json:"is_auto_created"`
}

func (r *EnsureRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	}
	if !validator.IsEmpty(r.Date) && !validator.IsValidDate(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be YYYY-MM-DD",
		})
	}
	if validator.IsEmpty(r.GroupName) {
		errs = append(errs, validator.ValidationError{
			Field:   "group_name",
			Message: "group_name is required",
		})
	}
	if !validator.IsInSlice(r.Type, TypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: " + strings.Join(TypeValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SaveChannelLogsRequest struct {
	ChannelLogs  map[string]ChannelLog `json:"channel_logs"`
	SystemIssues []SystemIssue         `json:"system_issues"`
}

func (r *SaveChannelLogsRequest) Validate() error {
	var errs validator.ValidationErrors

	for channel, log := range r.ChannelLogs {
		for slot, entry := range log.Timecodes {
			if validator.IsEmpty(entry) {
				continue
			}
			if !validator.ContainsValidTimecode(entry) {
				errs = append(errs, validator.ValidationError{
					Field:   fmt.Sprintf("channel_logs.%s.timecodes.%s", channel, slot),
					Message: "entry must contain a valid HH:MM:SS:FF timecode",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SignRequest struct {
	Role string `json:"role"`
}

func (r *SignRequest) Validate() error {
	for _, role := range SignatureRoles {
		if r.Role == string(role) {
			return nil
		}
	}
	return validator.ValidationErrors{{
		Field:   "role",
		Message: "role must be one of: operation, team_leader, mcr, network",
	}}
}

type Response struct {
	ID             string                `json:"id"`
	Date           string                `json:"date"`
	GroupName      string                `json:"group_name"`
	Type           Type                  `json:"type"`
	Workers        Workers               `json:"workers"`
	ChannelLogs    map[string]ChannelLog `json:"channel_logs"`
	SystemIssues   []SystemIssue         `json:"system_issues"`
	Signatures     Signatures            `json:"signatures"`
	SignatureCount string                `json:"signature_count"`
	Status         Status                `json:"status"`
	IsAutoCreated  bool                  `json:"is_auto_created"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func NewResponse(w Worklog) Response {
	return Response{
		ID:             w.ID,
		Date:           w.Date.Format("2006-01-02"),
		GroupName:      w.GroupName,
		Type:           w.Type,
		Workers:        w.Workers,
		ChannelLogs:    w.ChannelLogs,
		SystemIssues:   w.SystemIssues,
		Signatures:     w.Signatures,
		SignatureCount: fmt.Sprintf("%d/4", w.Signatures.Count()),
		Status:         w.Status,
		IsAutoCreated:  w.IsAutoCreated,
		UpdatedAt:      w.UpdatedAt,
	}
}
