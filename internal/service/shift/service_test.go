package shift

import (
	"context"
	"testing"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/roster"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/shift"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = time.FixedZone("KST", 9*60*60)

type fakeConfigRepo struct {
	configs []shift.PatternConfig
}

func (f *fakeConfigRepo) ActiveConfig(_ context.Context, date time.Time) (shift.PatternConfig, error) {
	var best *shift.PatternConfig
	for i := range f.configs {
		c := &f.configs[i]
		if c.ValidFrom.After(date) {
			continue
		}
		if c.ValidTo != nil && c.ValidTo.Before(date) {
			continue
		}
		if best == nil || c.ValidFrom.After(best.ValidFrom) {
			best = c
		}
	}
	if best == nil {
		return shift.PatternConfig{}, pgx.ErrNoRows
	}
	return *best, nil
}

func (f *fakeConfigRepo) GetByID(_ context.Context, id string) (shift.PatternConfig, error) {
	for _, c := range f.configs {
		if c.ID == id {
			return c, nil
		}
	}
	return shift.PatternConfig{}, pgx.ErrNoRows
}

func (f *fakeConfigRepo) Create(_ context.Context, config shift.PatternConfig) (shift.PatternConfig, error) {
	config.ID = "created"
	config.CreatedAt = time.Now()
	f.configs = append(f.configs, config)
	return config, nil
}

func (f *fakeConfigRepo) List(_ context.Context, _ int) ([]shift.PatternConfig, error) {
	return f.configs, nil
}

type fakeRosterRepo struct {
	members map[string][]roster.GroupMember
}

func (f *fakeRosterRepo) GroupMembers(_ context.Context, groupName string) ([]roster.GroupMember, error) {
	members, ok := f.members[groupName]
	if !ok {
		return nil, roster.ErrGroupNotFound
	}
	return members, nil
}

func (f *fakeRosterRepo) GetUserByID(_ context.Context, _ string) (roster.User, error) {
	return roster.User{}, roster.ErrUserNotFound
}

func (f *fakeRosterRepo) GetUserByName(_ context.Context, _ string) (roster.User, error) {
	return roster.User{}, roster.ErrUserNotFound
}

// fourTeamConfig is the standard 4-day rotation: each team works one day
// shift, one night shift, then rests two days.
func fourTeamConfig(validFrom time.Time) shift.PatternConfig {
	return shift.PatternConfig{
		ID:          "cfg-1",
		ValidFrom:   validFrom,
		CycleLength: 4,
		Pattern: []shift.DailyPattern{
			{Day: 0, DayShift: shift.Slot{Team: "1조"}, NightShift: shift.Slot{Team: "2조"}},
			{Day: 1, DayShift: shift.Slot{Team: "3조"}, NightShift: shift.Slot{Team: "4조"}},
			{Day: 2, DayShift: shift.Slot{Team: "2조"}, NightShift: shift.Slot{Team: "1조"}},
			{Day: 3, DayShift: shift.Slot{Team: "4조"}, NightShift: shift.Slot{Team: "3조"}},
		},
		Roster: map[string]shift.TeamRoster{
			"1조": {Entries: []shift.Member{
				{Name: "김감독"}, {Name: "박부감"}, {Name: "최영상"},
			}},
			"2조": {Tagged: true, Entries: []shift.Member{
				{Name: "이감독", Role: shift.RoleDirector},
				{Name: "정부감", Role: shift.RoleAssistant},
				{Name: "한영상", Role: shift.RoleVideo},
			}},
		},
	}
}

func newTestService(configRepo shift.ConfigRepository, rosterRepo roster.Repository) shift.ShiftService {
	if configRepo == nil {
		configRepo = &fakeConfigRepo{}
	}
	if rosterRepo == nil {
		rosterRepo = &fakeRosterRepo{}
	}
	return NewShiftService(configRepo, rosterRepo, seoul)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, seoul)
}

func TestCalculateShift(t *testing.T) {
	svc := newTestService(nil, nil)
	config := fourTeamConfig(date(2025, 11, 1))

	// Day 0 of the cycle
	info := svc.CalculateShift(date(2025, 11, 1), "1조", config)
	assert.Equal(t, shift.ShiftTypeDay, info.Type)

	info = svc.CalculateShift(date(2025, 11, 1), "2조", config)
	assert.Equal(t, shift.ShiftTypeNight, info.Type)

	// Off-duty teams resolve to none, not an error
	info = svc.CalculateShift(date(2025, 11, 1), "3조", config)
	assert.Equal(t, shift.ShiftTypeNone, info.Type)

	// One full cycle later the assignment repeats
	info = svc.CalculateShift(date(2025, 11, 5), "1조", config)
	assert.Equal(t, shift.ShiftTypeDay, info.Type)
}

func TestCalculateShiftBeforeValidFrom(t *testing.T) {
	svc := newTestService(nil, nil)
	config := fourTeamConfig(date(2025, 11, 1))

	// Two days before valid_from: floored modulo lands on cycle day 2, where
	// 2조 works days and 1조 works nights.
	info := svc.CalculateShift(date(2025, 10, 30), "2조", config)
	assert.Equal(t, shift.ShiftTypeDay, info.Type)

	info = svc.CalculateShift(date(2025, 10, 30), "1조", config)
	assert.Equal(t, shift.ShiftTypeNight, info.Type)

	// A full cycle before valid_from maps to cycle day 0
	info = svc.CalculateShift(date(2025, 10, 28), "1조", config)
	assert.Equal(t, shift.ShiftTypeDay, info.Type)
}

func TestCalculateShiftLargeOffsets(t *testing.T) {
	svc := newTestService(nil, nil)
	config := fourTeamConfig(date(2020, 1, 1))

	// ~6 years out, the cycle index must stay stable
	info := svc.CalculateShift(date(2026, 1, 1), "1조", config)
	assert.NotEqual(t, shift.ShiftType(""), info.Type)

	// 2193 days elapsed, 2193 % 4 == 1: 3조 works the day shift
	info = svc.CalculateShift(date(2026, 1, 2), "3조", config)
	assert.Equal(t, shift.ShiftTypeDay, info.Type)
}

func TestCalculateShiftAcrossDSTTransition(t *testing.T) {
	nyc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	svc := NewShiftService(&fakeConfigRepo{}, &fakeRosterRepo{}, nyc)
	config := fourTeamConfig(time.Date(2025, 1, 1, 0, 0, 0, 0, nyc))

	// 2025-07-01 is 181 calendar days after the anchor, but only 4343 wall
	// clock hours because of the March spring-forward. The cycle index must
	// come from the calendar difference: day 181 % 4 == 1, where 3조 works
	// days and 4조 works nights.
	july := time.Date(2025, 7, 1, 0, 0, 0, 0, nyc)
	info := svc.CalculateShift(july, "3조", config)
	assert.Equal(t, shift.ShiftTypeDay, info.Type)

	info = svc.CalculateShift(july, "4조", config)
	assert.Equal(t, shift.ShiftTypeNight, info.Type)

	// The day before must land on the previous cycle day, not the same one
	info = svc.CalculateShift(time.Date(2025, 6, 30, 0, 0, 0, 0, nyc), "1조", config)
	assert.Equal(t, shift.ShiftTypeDay, info.Type)
}

func TestCalculateShiftSwapFlag(t *testing.T) {
	svc := newTestService(nil, nil)
	config := fourTeamConfig(date(2025, 11, 1))
	config.Pattern[0].DayShift.IsSwap = true

	info := svc.CalculateShift(date(2025, 11, 1), "1조", config)
	assert.True(t, info.IsSwap)

	info = svc.CalculateShift(date(2025, 11, 1), "2조", config)
	assert.False(t, info.IsSwap)
}

func TestCalculateShiftRange(t *testing.T) {
	svc := newTestService(nil, nil)
	config := fourTeamConfig(date(2025, 11, 1))

	infos := svc.CalculateShiftRange(date(2025, 11, 1), date(2025, 11, 8), "1조", config)
	require.Len(t, infos, 8)

	assert.Equal(t, shift.ShiftTypeDay, infos[0].Type)
	assert.Equal(t, shift.ShiftTypeNone, infos[1].Type)
	assert.Equal(t, shift.ShiftTypeNight, infos[2].Type)
	assert.Equal(t, shift.ShiftTypeNone, infos[3].Type)
	// Cycle repeats
	assert.Equal(t, shift.ShiftTypeDay, infos[4].Type)
}

func TestLogicalShiftInfoBoundaries(t *testing.T) {
	svc := newTestService(nil, nil)

	cases := []struct {
		name     string
		instant  time.Time
		wantDate time.Time
		wantType shift.ShiftType
	}{
		{
			name:     "one second before day start belongs to yesterday's night",
			instant:  time.Date(2025, 11, 6, 7, 29, 59, 0, seoul),
			wantDate: date(2025, 11, 5),
			wantType: shift.ShiftTypeNight,
		},
		{
			name:     "day shift starts exactly at 07:30",
			instant:  time.Date(2025, 11, 6, 7, 30, 0, 0, seoul),
			wantDate: date(2025, 11, 6),
			wantType: shift.ShiftTypeDay,
		},
		{
			name:     "last instant of the day shift",
			instant:  time.Date(2025, 11, 6, 18, 29, 59, 0, seoul),
			wantDate: date(2025, 11, 6),
			wantType: shift.ShiftTypeDay,
		},
		{
			name:     "night shift starts exactly at 18:30",
			instant:  time.Date(2025, 11, 6, 18, 30, 0, 0, seoul),
			wantDate: date(2025, 11, 6),
			wantType: shift.ShiftTypeNight,
		},
		{
			name:     "after midnight still belongs to the previous day",
			instant:  time.Date(2025, 11, 7, 2, 0, 0, 0, seoul),
			wantDate: date(2025, 11, 6),
			wantType: shift.ShiftTypeNight,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := svc.LogicalShiftInfo(tc.instant)
			assert.True(t, tc.wantDate.Equal(info.Date), "date: got %v want %v", info.Date, tc.wantDate)
			assert.Equal(t, tc.wantType, info.Type)
		})
	}
}

func TestTeamsForDate(t *testing.T) {
	svc := newTestService(nil, nil)
	config := fourTeamConfig(date(2025, 11, 1))

	teams, ok := svc.TeamsForDate(date(2025, 11, 2), config)
	require.True(t, ok)
	assert.Equal(t, "3조", teams.Day)
	assert.Equal(t, "4조", teams.Night)
}

func TestNextTeam(t *testing.T) {
	svc := newTestService(nil, nil)
	config := fourTeamConfig(date(2025, 11, 1))

	// Day hands over to the same day's night team
	assert.Equal(t, "2조", svc.NextTeam("1조", shift.ShiftTypeDay, config))

	// Night hands over to the next day's day team
	assert.Equal(t, "3조", svc.NextTeam("2조", shift.ShiftTypeNight, config))

	// Last cycle day wraps around to day 0
	assert.Equal(t, "1조", svc.NextTeam("3조", shift.ShiftTypeNight, config))

	// Unknown team has no successor
	assert.Equal(t, "", svc.NextTeam("9조", shift.ShiftTypeDay, config))
}

func TestMembersWithRolesUntaggedSnapshot(t *testing.T) {
	svc := newTestService(nil, nil)
	config := fourTeamConfig(date(2025, 11, 1))

	members, err := svc.MembersWithRoles(context.Background(), "1조", date(2025, 11, 1), config)
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, shift.Member{Name: "김감독", Role: shift.RoleDirector}, members[0])
	assert.Equal(t, shift.Member{Name: "박부감", Role: shift.RoleAssistant}, members[1])
	assert.Equal(t, shift.Member{Name: "최영상", Role: shift.RoleVideo}, members[2])
}

func TestMembersWithRolesSwap(t *testing.T) {
	svc := newTestService(nil, nil)
	config := fourTeamConfig(date(2025, 11, 1))
	config.Pattern[0].DayShift.IsSwap = true

	members, err := svc.MembersWithRoles(context.Background(), "1조", date(2025, 11, 1), config)
	require.NoError(t, err)
	require.Len(t, members, 3)

	// Director and assistant trade places, video is untouched
	assert.Equal(t, shift.Member{Name: "박부감", Role: shift.RoleDirector}, members[0])
	assert.Equal(t, shift.Member{Name: "김감독", Role: shift.RoleAssistant}, members[1])
	assert.Equal(t, shift.Member{Name: "최영상", Role: shift.RoleVideo}, members[2])

	// Resolving again yields the same result, the swap is not cumulative
	again, err := svc.MembersWithRoles(context.Background(), "1조", date(2025, 11, 1), config)
	require.NoError(t, err)
	assert.Equal(t, members, again)
}

func TestMembersWithRolesTaggedSnapshot(t *testing.T) {
	svc := newTestService(nil, nil)
	config := fourTeamConfig(date(2025, 11, 1))

	members, err := svc.MembersWithRoles(context.Background(), "2조", date(2025, 11, 1), config)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "이감독", members[0].Name)
	assert.Equal(t, shift.RoleDirector, members[0].Role)
}

func TestMembersWithRolesLiveFallback(t *testing.T) {
	rosterRepo := &fakeRosterRepo{members: map[string][]roster.GroupMember{
		"3조": {
			{UserID: "u1", Name: "송감독", Role: "감독,부감독", DisplayOrder: 1},
			{UserID: "u2", Name: "윤영상", Role: "영상", DisplayOrder: 2},
		},
	}}
	svc := newTestService(nil, rosterRepo)
	config := fourTeamConfig(date(2025, 11, 1))

	// 3조 has no snapshot, so live membership is used with primary roles
	members, err := svc.MembersWithRoles(context.Background(), "3조", date(2025, 11, 2), config)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, shift.Member{Name: "송감독", Role: "감독"}, members[0])
	assert.Equal(t, shift.Member{Name: "윤영상", Role: "영상"}, members[1])

	// Unknown team with no snapshot either
	_, err = svc.MembersWithRoles(context.Background(), "9조", date(2025, 11, 2), config)
	assert.ErrorIs(t, err, shift.ErrRosterNotFound)

	// Empty team name is a caller bug
	_, err = svc.MembersWithRoles(context.Background(), "", date(2025, 11, 2), config)
	assert.ErrorIs(t, err, shift.ErrTeamRequired)
}

func TestActiveConfigResolution(t *testing.T) {
	older := fourTeamConfig(date(2025, 1, 1))
	older.ID = "older"
	newer := fourTeamConfig(date(2025, 11, 1))
	newer.ID = "newer"

	repo := &fakeConfigRepo{configs: []shift.PatternConfig{older, newer}}
	svc := newTestService(repo, nil)

	config, err := svc.ActiveConfig(context.Background(), date(2025, 11, 15))
	require.NoError(t, err)
	assert.Equal(t, "newer", config.ID)

	config, err = svc.ActiveConfig(context.Background(), date(2025, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, "older", config.ID)

	_, err = svc.ActiveConfig(context.Background(), date(2024, 1, 1))
	assert.ErrorIs(t, err, shift.ErrNoActiveConfig)
}

func TestCreateConfigValidation(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := newTestService(repo, nil)

	_, err := svc.CreateConfig(context.Background(), shift.CreateConfigRequest{
		ValidFrom:   "2025-11-01",
		CycleLength: 2,
		Pattern: []shift.DailyPattern{
			{Day: 0, DayShift: shift.Slot{Team: "1조"}, NightShift: shift.Slot{Team: "2조"}},
		},
	})
	assert.Error(t, err)

	created, err := svc.CreateConfig(context.Background(), shift.CreateConfigRequest{
		ValidFrom:   "2025-11-01",
		CycleLength: 2,
		Pattern: []shift.DailyPattern{
			{Day: 0, DayShift: shift.Slot{Team: "1조"}, NightShift: shift.Slot{Team: "2조"}},
			{Day: 1, DayShift: shift.Slot{Team: "2조"}, NightShift: shift.Slot{Team: "1조"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "created", created.ID)
	assert.Equal(t, 2, created.CycleLength)
}
