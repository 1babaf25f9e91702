package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/shift"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
)

// WorklogJobs creates the logical day's worklog record ahead of the crew so
// the first autosave never races the initial insert.
type WorklogJobs struct {
	shiftSvc   shift.ShiftService
	worklogSvc worklog.LifecycleService
	location   *time.Location
	interval   time.Duration
	now        func() time.Time
}

func NewWorklogJobs(shiftSvc shift.ShiftService, worklogSvc worklog.LifecycleService, location *time.Location, interval time.Duration) *WorklogJobs {
	return &WorklogJobs{
		shiftSvc:   shiftSvc,
		worklogSvc: worklogSvc,
		location:   location,
		interval:   interval,
		now:        time.Now,
	}
}

func (j *WorklogJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_create_worklog", j.interval, j.AutoCreateWorklog)
}

// AutoCreateWorklog ensures the worklog for the shift currently in progress
// exists. EnsureWorklog is idempotent, so running every tick is harmless.
func (j *WorklogJobs) AutoCreateWorklog(ctx context.Context) error {
	now := j.now().In(j.location)
	info := j.shiftSvc.LogicalShiftInfo(now)

	config, err := j.shiftSvc.ActiveConfig(ctx, info.Date)
	if err != nil {
		if errors.Is(err, shift.ErrNoActiveConfig) {
			slog.Debug("Cron: no active shift configuration, skipping worklog auto-create")
			return nil
		}
		return fmt.Errorf("failed to resolve shift configuration: %w", err)
	}

	teams, ok := j.shiftSvc.TeamsForDate(info.Date, config)
	if !ok {
		slog.Debug("Cron: no team assignment for date", "date", info.Date.Format("2006-01-02"))
		return nil
	}

	team := teams.Day
	typ := worklog.TypeDay
	if info.Type == shift.ShiftTypeNight {
		team = teams.Night
		typ = worklog.TypeNight
	}
	if team == "" {
		return nil
	}

	workers, err := j.resolveWorkers(ctx, team, info.Date, config)
	if err != nil {
		slog.Warn("Cron: could not resolve workers for auto-created worklog",
			"team", team, "error", err)
	}

	created, err := j.worklogSvc.EnsureWorklog(ctx, worklog.EnsureRequest{
		Date:          info.Date.Format("2006-01-02"),
		GroupName:     team,
		Type:          string(typ),
		Workers:       workers,
		IsAutoCreated: true,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure worklog for %s/%s: %w", team, typ, err)
	}

	slog.Debug("Cron: worklog ensured",
		"worklog_id", created.ID,
		"date", created.Date.Format("2006-01-02"),
		"group", created.GroupName,
		"type", created.Type)
	return nil
}

func (j *WorklogJobs) resolveWorkers(ctx context.Context, team string, date time.Time, config shift.PatternConfig) (worklog.Workers, error) {
	members, err := j.shiftSvc.MembersWithRoles(ctx, team, date, config)
	if err != nil {
		return worklog.Workers{}, err
	}

	var workers worklog.Workers
	for _, m := range members {
		switch m.Role {
		case shift.RoleDirector:
			workers.Director = append(workers.Director, m.Name)
		case shift.RoleAssistant:
			workers.Assistant = append(workers.Assistant, m.Name)
		case shift.RoleVideo:
			workers.Video = append(workers.Video, m.Name)
		}
	}
	return workers, nil
}
