package shift

import (
	"context"
	"time"
)

// LogicalInfo is the operational date and shift a wall-clock instant belongs
// to. A night shift spanning midnight is attributed to the day it started.
type LogicalInfo struct {
	Date time.Time
	Type ShiftType
}

// DayTeams is the day/night assignment pair for one cycle day.
type DayTeams struct {
	Day   string
	Night string
}

type ShiftService interface {
	// ActiveConfig resolves the single active configuration for a date.
	// Returns ErrNoActiveConfig when no schedule is defined.
	ActiveConfig(ctx context.Context, date time.Time) (PatternConfig, error)

	// CalculateShift maps (date, team) to a shift assignment using the
	// supplied config. Total: off-duty teams get ShiftTypeNone.
	CalculateShift(date time.Time, team string, config PatternConfig) Info

	// CalculateShiftRange iterates calendar dates inclusive with one resolved
	// config (preview use; production callers re-resolve per day).
	CalculateShiftRange(start, end time.Time, team string, config PatternConfig) []Info

	// LogicalShiftInfo converts a wall-clock instant into the logical shift
	// date and type. Pure and exact at the 07:30 / 18:30 boundaries.
	LogicalShiftInfo(instant time.Time) LogicalInfo

	// TeamsForDate returns the day and night teams for a date.
	TeamsForDate(date time.Time, config PatternConfig) (DayTeams, bool)

	// NextTeam returns the team taking over from (team, shiftType).
	NextTeam(team string, shiftType ShiftType, config PatternConfig) string

	// MembersWithRoles resolves the named role assignments for a team on a
	// date, applying the swap flag. Falls back to live group membership only
	// when the team has no roster snapshot at all.
	MembersWithRoles(ctx context.Context, team string, date time.Time, config PatternConfig) ([]Member, error)

	CreateConfig(ctx context.Context, req CreateConfigRequest) (PatternConfig, error)
	ListConfigs(ctx context.Context, limit int) ([]PatternConfig, error)
}
