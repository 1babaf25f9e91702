package shift

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/roster"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/shift"
	"github.com/jackc/pgx/v5"
)

type shiftServiceImpl struct {
	configRepo shift.ConfigRepository
	rosterRepo roster.Repository
	location   *time.Location
}

func NewShiftService(configRepo shift.ConfigRepository, rosterRepo roster.Repository, location *time.Location) shift.ShiftService {
	return &shiftServiceImpl{
		configRepo: configRepo,
		rosterRepo: rosterRepo,
		location:   location,
	}
}

// ActiveConfig implements shift.ShiftService.
func (s *shiftServiceImpl) ActiveConfig(ctx context.Context, date time.Time) (shift.PatternConfig, error) {
	config, err := s.configRepo.ActiveConfig(ctx, truncateToDay(date))
	if errors.Is(err, pgx.ErrNoRows) {
		return shift.PatternConfig{}, shift.ErrNoActiveConfig
	}
	if err != nil {
		return shift.PatternConfig{}, err
	}
	return config, nil
}

// CalculateShift implements shift.ShiftService. The cycle index is a floored
// modulo of the day offset from ValidFrom, so dates before ValidFrom still
// land on a valid cycle day instead of a negative index.
func (s *shiftServiceImpl) CalculateShift(date time.Time, team string, config shift.PatternConfig) shift.Info {
	info := shift.Info{
		Date: truncateToDay(date),
		Team: team,
		Type: shift.ShiftTypeNone,
	}

	pattern, ok := s.patternForDate(date, config)
	if !ok {
		return info
	}

	switch {
	case pattern.DayShift.Team == team:
		info.Type = shift.ShiftTypeDay
		info.IsSwap = pattern.DayShift.IsSwap
	case pattern.NightShift.Team == team:
		info.Type = shift.ShiftTypeNight
		info.IsSwap = pattern.NightShift.IsSwap
	}
	return info
}

// CalculateShiftRange implements shift.ShiftService.
func (s *shiftServiceImpl) CalculateShiftRange(start, end time.Time, team string, config shift.PatternConfig) []shift.Info {
	start = truncateToDay(start)
	end = truncateToDay(end)

	var infos []shift.Info
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		infos = append(infos, s.CalculateShift(d, team, config))
	}
	return infos
}

// Logical day boundaries in minutes since midnight. The day shift runs 07:30
// to 18:30; anything earlier belongs to the previous day's night shift.
const (
	dayShiftStartMinute = 7*60 + 30
	dayShiftEndMinute   = 18*60 + 30
)

// LogicalShiftInfo implements shift.ShiftService.
func (s *shiftServiceImpl) LogicalShiftInfo(instant time.Time) shift.LogicalInfo {
	local := instant.In(s.location)
	minute := local.Hour()*60 + local.Minute()
	date := truncateToDay(local)

	switch {
	case minute < dayShiftStartMinute:
		return shift.LogicalInfo{Date: date.AddDate(0, 0, -1), Type: shift.ShiftTypeNight}
	case minute < dayShiftEndMinute:
		return shift.LogicalInfo{Date: date, Type: shift.ShiftTypeDay}
	default:
		return shift.LogicalInfo{Date: date, Type: shift.ShiftTypeNight}
	}
}

// TeamsForDate implements shift.ShiftService.
func (s *shiftServiceImpl) TeamsForDate(date time.Time, config shift.PatternConfig) (shift.DayTeams, bool) {
	pattern, ok := s.patternForDate(date, config)
	if !ok {
		return shift.DayTeams{}, false
	}
	return shift.DayTeams{
		Day:   pattern.DayShift.Team,
		Night: pattern.NightShift.Team,
	}, true
}

// NextTeam implements shift.ShiftService. A day shift hands over to the same
// cycle day's night team; a night shift hands over to the next cycle day's
// day team.
func (s *shiftServiceImpl) NextTeam(team string, shiftType shift.ShiftType, config shift.PatternConfig) string {
	for _, p := range config.Pattern {
		switch shiftType {
		case shift.ShiftTypeDay:
			if p.DayShift.Team == team {
				return p.NightShift.Team
			}
		case shift.ShiftTypeNight:
			if p.NightShift.Team == team {
				next, ok := config.PatternFor((p.Day + 1) % config.CycleLength)
				if !ok {
					return ""
				}
				return next.DayShift.Team
			}
		}
	}
	return ""
}

// MembersWithRoles implements shift.ShiftService. The config's roster snapshot
// takes precedence so that past dates keep rendering the crew that actually
// worked them; live group membership is consulted only when the team has no
// snapshot at all.
func (s *shiftServiceImpl) MembersWithRoles(ctx context.Context, team string, date time.Time, config shift.PatternConfig) ([]shift.Member, error) {
	if team == "" {
		return nil, shift.ErrTeamRequired
	}

	snapshot, ok := config.Roster[team]
	if !ok {
		return s.liveMembers(ctx, team)
	}

	members := assignRoles(snapshot)
	if s.CalculateShift(date, team, config).IsSwap {
		members = swapLeads(members)
	}
	return members, nil
}

// CreateConfig implements shift.ShiftService.
func (s *shiftServiceImpl) CreateConfig(ctx context.Context, req shift.CreateConfigRequest) (shift.PatternConfig, error) {
	if err := req.Validate(); err != nil {
		return shift.PatternConfig{}, err
	}

	validFrom, err := time.ParseInLocation("2006-01-02", req.ValidFrom, s.location)
	if err != nil {
		return shift.PatternConfig{}, shift.ErrInvalidDateFormat
	}

	config := shift.PatternConfig{
		ValidFrom:   validFrom,
		CycleLength: req.CycleLength,
		Pattern:     req.Pattern,
		Roster:      req.Roster,
		Roles:       req.Roles,
		Memo:        req.Memo,
	}
	if req.ValidTo != nil {
		validTo, err := time.ParseInLocation("2006-01-02", *req.ValidTo, s.location)
		if err != nil {
			return shift.PatternConfig{}, shift.ErrInvalidDateFormat
		}
		config.ValidTo = &validTo
	}

	if err := config.Validate(); err != nil {
		return shift.PatternConfig{}, err
	}

	return s.configRepo.Create(ctx, config)
}

// ListConfigs implements shift.ShiftService.
func (s *shiftServiceImpl) ListConfigs(ctx context.Context, limit int) ([]shift.PatternConfig, error) {
	return s.configRepo.List(ctx, limit)
}

func (s *shiftServiceImpl) patternForDate(date time.Time, config shift.PatternConfig) (shift.DailyPattern, bool) {
	if config.CycleLength <= 0 {
		return shift.DailyPattern{}, false
	}

	diffDays := daysBetween(truncateToDay(config.ValidFrom), truncateToDay(date))
	idx := diffDays % config.CycleLength
	if idx < 0 {
		idx += config.CycleLength
	}
	return config.PatternFor(idx)
}

func (s *shiftServiceImpl) liveMembers(ctx context.Context, team string) ([]shift.Member, error) {
	groupMembers, err := s.rosterRepo.GroupMembers(ctx, team)
	if errors.Is(err, roster.ErrGroupNotFound) {
		return nil, shift.ErrRosterNotFound
	}
	if err != nil {
		return nil, err
	}

	members := make([]shift.Member, 0, len(groupMembers))
	for _, gm := range groupMembers {
		role, _, _ := strings.Cut(gm.Role, ",")
		members = append(members, shift.Member{
			Name: gm.Name,
			Role: strings.TrimSpace(role),
		})
	}
	return members, nil
}

// assignRoles produces the role-tagged member list for a snapshot. Untagged
// snapshots are ordered lists: the first name is the director, the second the
// assistant director, the rest video operators.
func assignRoles(snapshot shift.TeamRoster) []shift.Member {
	if snapshot.Tagged {
		return append([]shift.Member(nil), snapshot.Entries...)
	}

	members := make([]shift.Member, len(snapshot.Entries))
	for i, e := range snapshot.Entries {
		role := shift.RoleVideo
		switch i {
		case 0:
			role = shift.RoleDirector
		case 1:
			role = shift.RoleAssistant
		}
		members[i] = shift.Member{Name: e.Name, Role: role}
	}
	return members
}

// swapLeads exchanges the names of the first two director-capable members.
// With fewer than two such members the list is returned unchanged.
func swapLeads(members []shift.Member) []shift.Member {
	first := -1
	for i, m := range members {
		if !strings.Contains(m.Role, shift.RoleDirector) {
			continue
		}
		if first < 0 {
			first = i
			continue
		}
		members[first].Name, members[i].Name = members[i].Name, members[first].Name
		break
	}
	return members
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days, not elapsed hours. Both dates are
// re-anchored to UTC midnight first so DST transitions in the configured
// timezone cannot shorten a day and shift the whole rotation.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
