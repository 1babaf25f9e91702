package shift

import (
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/validator"
)

type CreateConfigRequest struct {
	ValidFrom   string                `json:"valid_from"`
	ValidTo     *string               `json:"valid_to"`
	CycleLength int                   `json:"cycle_length"`
	Pattern     []DailyPattern        `json:"pattern_json"`
	Roster      map[string]TeamRoster `json:"roster_json"`
	Roles       []string              `json:"roles_json"`
	Memo        string                `json:"memo"`
}

func (r *CreateConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ValidFrom) {
		errs = append(errs, validator.ValidationError{
			Field:   "valid_from",
			Message: "valid_from is required",
		})
	}
	if !validator.IsEmpty(r.ValidFrom) && !validator.IsValidDate(r.ValidFrom) {
		errs = append(errs, validator.ValidationError{
			Field:   "valid_from",
			Message: "valid_from must be YYYY-MM-DD",
		})
	}
	if r.ValidTo != nil && !validator.IsValidDate(*r.ValidTo) {
		errs = append(errs, validator.ValidationError{
			Field:   "valid_to",
			Message: "valid_to must be YYYY-MM-DD",
		})
	}
	if r.CycleLength <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "cycle_length",
			Message: "cycle_length must be a positive integer",
		})
	}
	if len(r.Pattern) != r.CycleLength {
		errs = append(errs, validator.ValidationError{
			Field:   "pattern_json",
			Message: "pattern_json must have exactly cycle_length entries",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type InfoResponse struct {
	Date   string    `json:"date"`
	Team   string    `json:"team"`
	Type   ShiftType `json:"shift_type"`
	Label  string    `json:"label"`
	IsSwap bool      `json:"is_swap"`
}

func NewInfoResponse(info Info) InfoResponse {
	return InfoResponse{
		Date:   info.Date.Format("2006-01-02"),
		Team:   info.Team,
		Type:   info.Type,
		Label:  info.Type.Label(),
		IsSwap: info.IsSwap,
	}
}

type ConfigResponse struct {
	ID          string                `json:"id"`
	ValidFrom   string                `json:"valid_from"`
	ValidTo     *string               `json:"valid_to"`
	CycleLength int                   `json:"cycle_length"`
	Pattern     []DailyPattern        `json:"pattern_json"`
	Roster      map[string]TeamRoster `json:"roster_json"`
	Roles       []string              `json:"roles_json"`
	Memo        string                `json:"memo,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

func NewConfigResponse(c PatternConfig) ConfigResponse {
	resp := ConfigResponse{
		ID:          c.ID,
		ValidFrom:   c.ValidFrom.Format("2006-01-02"),
		CycleLength: c.CycleLength,
		Pattern:     c.Pattern,
		Roster:      c.Roster,
		Roles:       c.Roles,
		Memo:        c.Memo,
		CreatedAt:   c.CreatedAt,
	}
	if c.ValidTo != nil {
		s := c.ValidTo.Format("2006-01-02")
		resp.ValidTo = &s
	}
	return resp
}
