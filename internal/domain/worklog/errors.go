package worklog

import "errors"

var (
	// Worklog Errors
	ErrWorklogNotFound = errors.New("worklog not found")
	// ErrDuplicateRecord marks a creation race on (date, group, type). It is
	// recovered internally by redirecting to the existing record and must not
	// surface as a failure.
	ErrDuplicateRecord = errors.New("worklog already exists for date, group and shift")
	// ErrWorklogLocked rejects field-group edits once the record has left the
	// drafting state.
	ErrWorklogLocked = errors.New("worklog is locked and can no longer be edited")

	// Signature Errors
	ErrPermissionDenied  = errors.New("permission denied")
	ErrSignatureNotFound = errors.New("signature not found")
	ErrAlreadySigned     = errors.New("signature already present for role")
	ErrInvalidRole       = errors.New("unknown signature role")

	// Handover Errors
	ErrHandoverBlocked = errors.New("handover blocked: operation sign-off missing")
	ErrNoNextSession   = errors.New("no next session prepared for handover")
	ErrNoSession       = errors.New("no active session")

	// Validation Errors
	ErrInvalidType       = errors.New("type must be 주간 or 야간")
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
)

// PermissionError carries the human-readable reason shown to the actor.
// It unwraps to ErrPermissionDenied.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string { return e.Reason }

func (e *PermissionError) Unwrap() error { return ErrPermissionDenied }

func NewPermissionError(reason string) error {
	return &PermissionError{Reason: reason}
}
