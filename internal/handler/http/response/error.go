package response

import (
	"errors"
	"net/http"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/auth"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/roster"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/shift"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		Unauthorized(w, "Invalid or expired refresh token")
	case errors.Is(err, auth.ErrNoActiveSession):
		Unauthorized(w, "No active session")
	case errors.Is(err, auth.ErrNoNextTeam):
		Conflict(w, "No successor team for the current shift")

	// Shift domain errors
	case errors.Is(err, shift.ErrNoActiveConfig):
		NotFound(w, "No active shift configuration")
	case errors.Is(err, shift.ErrConfigNotFound):
		NotFound(w, "Shift configuration not found")
	case errors.Is(err, shift.ErrRosterNotFound):
		NotFound(w, "Roster not found for team")
	case errors.Is(err, shift.ErrInvalidCycleLength),
		errors.Is(err, shift.ErrPatternLengthMismatch),
		errors.Is(err, shift.ErrInvalidDateFormat),
		errors.Is(err, shift.ErrTeamRequired):
		BadRequest(w, err.Error(), nil)

	// Worklog domain errors
	case errors.Is(err, worklog.ErrWorklogNotFound):
		NotFound(w, "Worklog not found")
	case errors.Is(err, worklog.ErrSignatureNotFound):
		NotFound(w, "Signature not found")
	case errors.Is(err, worklog.ErrPermissionDenied):
		Forbidden(w, err.Error())
	case errors.Is(err, worklog.ErrAlreadySigned):
		Conflict(w, "Signature already present for this role")
	case errors.Is(err, worklog.ErrWorklogLocked):
		Conflict(w, "Worklog is locked and can no longer be edited")
	case errors.Is(err, worklog.ErrHandoverBlocked):
		Conflict(w, "Handover blocked: operation sign-off missing")
	case errors.Is(err, worklog.ErrNoNextSession):
		Conflict(w, "No next session prepared for handover")
	case errors.Is(err, worklog.ErrNoSession):
		Unauthorized(w, "No active session")
	case errors.Is(err, worklog.ErrInvalidRole),
		errors.Is(err, worklog.ErrInvalidType),
		errors.Is(err, worklog.ErrInvalidDateFormat):
		BadRequest(w, err.Error(), nil)

	// Roster domain errors
	case errors.Is(err, roster.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, roster.ErrGroupNotFound):
		NotFound(w, "Group not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
