package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type worklogRepositoryImpl struct {
	db *database.DB
}

func NewWorklogRepository(db *database.DB) worklog.Repository {
	return &worklogRepositoryImpl{db: db}
}

const worklogColumns = `
	id, date, group_name, type, workers, channel_logs, system_issues,
	signatures, status, is_auto_created, created_at, updated_at, deleted_at
`

// Create implements worklog.Repository. The unique partial index on
// (date, group_name, type) WHERE deleted_at IS NULL is the authoritative
// backstop against duplicate-creation races; callers recover from 23505.
func (r *worklogRepositoryImpl) Create(ctx context.Context, log worklog.Worklog) (worklog.Worklog, error) {
	q := GetQuerier(ctx, r.db)

	workersJSON, channelJSON, issuesJSON, sigsJSON, err := marshalWorklogFields(log)
	if err != nil {
		return worklog.Worklog{}, err
	}

	query := `
		INSERT INTO worklogs (
			id, date, group_name, type, workers, channel_logs, system_issues,
			signatures, status, is_auto_created, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		log.Date, log.GroupName, log.Type, workersJSON, channelJSON,
		issuesJSON, sigsJSON, log.Status, log.IsAutoCreated,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return worklog.Worklog{}, err
	}

	return log, nil
}

// GetByID implements worklog.Repository.
func (r *worklogRepositoryImpl) GetByID(ctx context.Context, id string) (worklog.Worklog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + worklogColumns + `
		FROM worklogs
		WHERE id = $1 AND deleted_at IS NULL
	`

	return scanWorklog(q.QueryRow(ctx, query, id))
}

// GetByKey implements worklog.Repository.
func (r *worklogRepositoryImpl) GetByKey(ctx context.Context, date time.Time, groupName string, typ worklog.Type) (worklog.Worklog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + worklogColumns + `
		FROM worklogs
		WHERE date = $1 AND group_name = $2 AND type = $3 AND deleted_at IS NULL
	`

	return scanWorklog(q.QueryRow(ctx, query, date, groupName, typ))
}

// List implements worklog.Repository. Night sorts before day within a date so
// the latest shift comes first.
func (r *worklogRepositoryImpl) List(ctx context.Context, filter worklog.Filter) ([]worklog.Worklog, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "deleted_at IS NULL"
	args := []interface{}{}
	argIdx := 1

	if filter.GroupName != "" {
		where += fmt.Sprintf(" AND group_name = $%d", argIdx)
		args = append(args, filter.GroupName)
		argIdx++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM worklogs WHERE " + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count worklogs: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`
		SELECT `+worklogColumns+`
		FROM worklogs
		WHERE %s
		ORDER BY date DESC, type ASC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query worklogs: %w", err)
	}
	defer rows.Close()

	var logs []worklog.Worklog
	for rows.Next() {
		log, err := scanWorklog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating worklogs: %w", err)
	}

	return logs, total, nil
}

// UpdateWorkers implements worklog.Repository. Writes only the workers
// sub-object so timecode and metadata saves cannot clobber it.
func (r *worklogRepositoryImpl) UpdateWorkers(ctx context.Context, id string, workers worklog.Workers) error {
	q := GetQuerier(ctx, r.db)

	workersJSON, err := json.Marshal(workers)
	if err != nil {
		return fmt.Errorf("failed to marshal workers: %w", err)
	}

	query := `
		UPDATE worklogs
		SET workers = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, workersJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update workers: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return worklog.ErrWorklogNotFound
	}
	return nil
}

// UpdateChannelLogs implements worklog.Repository.
func (r *worklogRepositoryImpl) UpdateChannelLogs(ctx context.Context, id string, logs map[string]worklog.ChannelLog, issues []worklog.SystemIssue) error {
	q := GetQuerier(ctx, r.db)

	channelJSON, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("failed to marshal channel_logs: %w", err)
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("failed to marshal system_issues: %w", err)
	}

	query := `
		UPDATE worklogs
		SET channel_logs = $1, system_issues = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, channelJSON, issuesJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update channel logs: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return worklog.ErrWorklogNotFound
	}
	return nil
}

// UpdateSignatures implements worklog.Repository. Status travels with the
// signatures because it is derived from them.
func (r *worklogRepositoryImpl) UpdateSignatures(ctx context.Context, id string, sigs worklog.Signatures, status worklog.Status) error {
	q := GetQuerier(ctx, r.db)

	sigsJSON, err := json.Marshal(sigs)
	if err != nil {
		return fmt.Errorf("failed to marshal signatures: %w", err)
	}

	query := `
		UPDATE worklogs
		SET signatures = $1, status = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, sigsJSON, status, id)
	if err != nil {
		return fmt.Errorf("failed to update signatures: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return worklog.ErrWorklogNotFound
	}
	return nil
}

// UpdateStatus implements worklog.Repository.
func (r *worklogRepositoryImpl) UpdateStatus(ctx context.Context, id string, status worklog.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE worklogs
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return worklog.ErrWorklogNotFound
	}
	return nil
}

// Delete implements worklog.Repository. Hard delete is reserved for the
// cancel-handover cleanup of signature-free, content-free drafts.
func (r *worklogRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM worklogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete worklog: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return worklog.ErrWorklogNotFound
	}
	return nil
}

// SoftDelete implements worklog.Repository.
func (r *worklogRepositoryImpl) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE worklogs
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete worklog: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return worklog.ErrWorklogNotFound
	}
	return nil
}

func marshalWorklogFields(log worklog.Worklog) (workers, channels, issues, sigs []byte, err error) {
	workers, err = json.Marshal(log.Workers)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal workers: %w", err)
	}
	if log.ChannelLogs == nil {
		log.ChannelLogs = map[string]worklog.ChannelLog{}
	}
	channels, err = json.Marshal(log.ChannelLogs)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal channel_logs: %w", err)
	}
	if log.SystemIssues == nil {
		log.SystemIssues = []worklog.SystemIssue{}
	}
	issues, err = json.Marshal(log.SystemIssues)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal system_issues: %w", err)
	}
	sigs, err = json.Marshal(log.Signatures)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal signatures: %w", err)
	}
	return workers, channels, issues, sigs, nil
}

func scanWorklog(row pgx.Row) (worklog.Worklog, error) {
	var log worklog.Worklog
	var workersJSON, channelJSON, issuesJSON, sigsJSON []byte

	err := row.Scan(
		&log.ID, &log.Date, &log.GroupName, &log.Type, &workersJSON,
		&channelJSON, &issuesJSON, &sigsJSON, &log.Status, &log.IsAutoCreated,
		&log.CreatedAt, &log.UpdatedAt, &log.DeletedAt,
	)
	if err != nil {
		return worklog.Worklog{}, err
	}

	if len(workersJSON) > 0 {
		if err := json.Unmarshal(workersJSON, &log.Workers); err != nil {
			return worklog.Worklog{}, fmt.Errorf("malformed workers for worklog %s: %w", log.ID, err)
		}
	}
	if len(channelJSON) > 0 {
		if err := json.Unmarshal(channelJSON, &log.ChannelLogs); err != nil {
			return worklog.Worklog{}, fmt.Errorf("malformed channel_logs for worklog %s: %w", log.ID, err)
		}
	}
	if len(issuesJSON) > 0 {
		if err := json.Unmarshal(issuesJSON, &log.SystemIssues); err != nil {
			return worklog.Worklog{}, fmt.Errorf("malformed system_issues for worklog %s: %w", log.ID, err)
		}
	}
	if len(sigsJSON) > 0 {
		if err := json.Unmarshal(sigsJSON, &log.Signatures); err != nil {
			return worklog.Worklog{}, fmt.Errorf("malformed signatures for worklog %s: %w", log.ID, err)
		}
	}

	log.Status = worklog.SanitizeStatus(log.Status)
	return log, nil
}
