package worklog

import (
	"context"
	"time"
)

type Filter struct {
	GroupName string
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

type Repository interface {
	Create(ctx context.Context, log Worklog) (Worklog, error)
	GetByID(ctx context.Context, id string) (Worklog, error)
	// GetByKey returns the non-deleted record for (date, group, type).
	// pgx.ErrNoRows when absent.
	GetByKey(ctx context.Context, date time.Time, groupName string, typ Type) (Worklog, error)
	List(ctx context.Context, filter Filter) ([]Worklog, int64, error)

	// Field-group updates. Each writes only its own sub-object so concurrent
	// saves from independent editing areas cannot clobber each other.
	UpdateWorkers(ctx context.Context, id string, workers Workers) error
	UpdateChannelLogs(ctx context.Context, id string, logs map[string]ChannelLog, issues []SystemIssue) error
	UpdateSignatures(ctx context.Context, id string, sigs Signatures, status Status) error
	UpdateStatus(ctx context.Context, id string, status Status) error

	Delete(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
}
