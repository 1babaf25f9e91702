package auth

import (
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/session"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/validator"
)

type LoginRequest struct {
	Name      string `json:"name"`
	PIN       string `json:"pin"`
	GroupName string `json:"group_name"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if validator.IsEmpty(r.PIN) {
		errs = append(errs, validator.ValidationError{
			Field:   "pin",
			Message: "pin is required",
		})
	}
	if validator.IsEmpty(r.GroupName) {
		errs = append(errs, validator.ValidationError{
			Field:   "group_name",
			Message: "group_name is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ConfirmPINRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

func (r *ConfirmPINRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if validator.IsEmpty(r.PIN) {
		errs = append(errs, validator.ValidationError{
			Field:   "pin",
			Message: "pin is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SessionResponse struct {
	ID        string           `json:"id"`
	GroupName string           `json:"group_name"`
	Members   []session.Member `json:"members"`
	StartedAt time.Time        `json:"started_at"`
}

func NewSessionResponse(s session.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		GroupName: s.GroupName,
		Members:   s.Members,
		StartedAt: s.StartedAt,
	}
}

type TokenResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   int64           `json:"expires_at"`
	Session     SessionResponse `json:"session"`

	// Refresh token travels in an HttpOnly cookie, never in the body.
	RefreshToken     string `json:"-"`
	RefreshExpiresAt int64  `json:"-"`
}

type SessionStateResponse struct {
	Current *SessionResponse `json:"current"`
	Next    *SessionResponse `json:"next"`
}
