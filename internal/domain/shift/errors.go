package shift

import "errors"

var (
	// Pattern Config Errors
	ErrNoActiveConfig        = errors.New("no shift pattern config active for date")
	ErrConfigNotFound        = errors.New("shift pattern config not found")
	ErrInvalidCycleLength    = errors.New("cycle length must be a positive integer")
	ErrPatternLengthMismatch = errors.New("pattern entries must cover cycle days 0..N-1 exactly once")

	// Roster Errors
	ErrRosterNotFound = errors.New("no roster found for team")

	// Validation Errors
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrTeamRequired      = errors.New("team name is required")
)
