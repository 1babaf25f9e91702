package shift

import (
	"encoding/json"
	"fmt"
	"time"
)

// PatternConfig is an immutable-once-published rotation configuration. The
// resolver always picks the config with the greatest ValidFrom not exceeding
// the target date; editing replaces a config, it never mutates one in place.
type PatternConfig struct {
	ID          string
	ValidFrom   time.Time
	ValidTo     *time.Time
	CycleLength int
	Pattern     []DailyPattern
	Roster      map[string]TeamRoster
	Roles       []string
	Memo        string
	CreatedBy   string
	CreatedAt   time.Time
}

// Slot assigns one team to one shift of a cycle day.
type Slot struct {
	Team   string `json:"team"`
	IsSwap bool   `json:"is_swap"`
}

// DailyPattern is one entry per cycle-day index. Day values are unique and
// contiguous 0..CycleLength-1.
type DailyPattern struct {
	Day        int  `json:"day"`
	DayShift   Slot `json:"A"`
	NightShift Slot `json:"N"`
}

type ShiftType string

const (
	ShiftTypeDay   ShiftType = "day"
	ShiftTypeNight ShiftType = "night"
	// ShiftTypeNone means the team appears in no slot for the day: off duty,
	// not an error.
	ShiftTypeNone ShiftType = "none"
)

// Worklog-facing labels as persisted by the worklogs table.
const (
	LabelDay   = "주간"
	LabelNight = "야간"
	LabelOff   = "휴무"
)

// Label returns the persisted Korean label for the shift type.
func (s ShiftType) Label() string {
	switch s {
	case ShiftTypeDay:
		return LabelDay
	case ShiftTypeNight:
		return LabelNight
	default:
		return LabelOff
	}
}

// Info is the resolved assignment for one team on one date. Derived, never
// stored.
type Info struct {
	Date   time.Time
	Team   string
	Type   ShiftType
	IsSwap bool
}

// Role labels used across roster snapshots, live membership and worklogs.
const (
	RoleDirector  = "감독"
	RoleAssistant = "부감독"
	RoleVideo     = "영상"
)

// Member is a named role assignment for one team on one date.
type Member struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// TeamRoster is one team's roster snapshot. Two source shapes occur in
// roster_json and both must be accepted: an explicit role-tagged entry list,
// or an ordered list of names (director-capable members first, video members
// last). Tagged records which shape the snapshot used.
type TeamRoster struct {
	Entries []Member
	Tagged  bool
}

type rosterEntryJSON struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// UnmarshalJSON accepts both snapshot shapes and rejects anything else at the
// deserialization boundary.
func (r *TeamRoster) UnmarshalJSON(data []byte) error {
	var tagged []rosterEntryJSON
	if err := json.Unmarshal(data, &tagged); err == nil && allNamed(tagged) {
		r.Entries = make([]Member, 0, len(tagged))
		r.Tagged = false
		for _, e := range tagged {
			r.Entries = append(r.Entries, Member{Name: e.Name, Role: e.Role})
			if e.Role != "" {
				r.Tagged = true
			}
		}
		return nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		r.Entries = make([]Member, 0, len(names))
		r.Tagged = false
		for _, n := range names {
			r.Entries = append(r.Entries, Member{Name: n})
		}
		return nil
	}

	// Role-keyed object shape: {"감독": "name", "부감독": "name", "영상": "name"}
	var byRole map[string]string
	if err := json.Unmarshal(data, &byRole); err == nil {
		r.Entries = r.Entries[:0]
		r.Tagged = true
		for _, role := range []string{RoleDirector, RoleAssistant, RoleVideo} {
			if name, ok := byRole[role]; ok && name != "" {
				r.Entries = append(r.Entries, Member{Name: name, Role: role})
			}
		}
		return nil
	}

	return fmt.Errorf("malformed roster snapshot: %s", string(data))
}

func (r TeamRoster) MarshalJSON() ([]byte, error) {
	if r.Tagged {
		out := make([]rosterEntryJSON, 0, len(r.Entries))
		for _, e := range r.Entries {
			out = append(out, rosterEntryJSON{Name: e.Name, Role: e.Role})
		}
		return json.Marshal(out)
	}
	names := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		names = append(names, e.Name)
	}
	return json.Marshal(names)
}

func allNamed(entries []rosterEntryJSON) bool {
	if len(entries) == 0 {
		return false
	}
	for _, e := range entries {
		if e.Name == "" {
			return false
		}
	}
	return true
}

// Validate rejects malformed pattern configs before they reach the role
// matching logic: day indices must be unique and contiguous 0..CycleLength-1.
func (c PatternConfig) Validate() error {
	if c.CycleLength <= 0 {
		return ErrInvalidCycleLength
	}
	if len(c.Pattern) != c.CycleLength {
		return ErrPatternLengthMismatch
	}
	seen := make(map[int]bool, len(c.Pattern))
	for _, p := range c.Pattern {
		if p.Day < 0 || p.Day >= c.CycleLength || seen[p.Day] {
			return ErrPatternLengthMismatch
		}
		seen[p.Day] = true
	}
	return nil
}

// PatternFor returns the daily pattern for a cycle-day index.
func (c PatternConfig) PatternFor(day int) (DailyPattern, bool) {
	for _, p := range c.Pattern {
		if p.Day == day {
			return p, true
		}
	}
	return DailyPattern{}, false
}
