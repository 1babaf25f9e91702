package worklog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/audit"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/shift"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/database"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/session"
	"github.com/gfinemax/worklog-mcr-sub000/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type worklogServiceImpl struct {
	db          *database.DB
	worklogRepo worklog.Repository
	auditRepo   audit.Repository
	shiftSvc    shift.ShiftService
	sessions    *session.Store
	location    *time.Location
	now         func() time.Time
	runTx       func(ctx context.Context, fn func(tx pgx.Tx) error) error
}

func NewWorklogService(
	db *database.DB,
	worklogRepo worklog.Repository,
	auditRepo audit.Repository,
	shiftSvc shift.ShiftService,
	sessions *session.Store,
	location *time.Location,
) worklog.LifecycleService {
	s := &worklogServiceImpl{
		db:          db,
		worklogRepo: worklogRepo,
		auditRepo:   auditRepo,
		shiftSvc:    shiftSvc,
		sessions:    sessions,
		location:    location,
		now:         time.Now,
	}
	s.runTx = func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		return postgresql.WithTransaction(ctx, s.db, fn)
	}
	return s
}

// EnsureWorklog implements worklog.LifecycleService. Lookup first, then
// insert; a 23505 from the partial unique index means another caller won the
// race, in which case the existing record is returned instead of an error.
func (s *worklogServiceImpl) EnsureWorklog(ctx context.Context, req worklog.EnsureRequest) (worklog.Worklog, error) {
	if err := req.Validate(); err != nil {
		return worklog.Worklog{}, err
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, s.location)
	if err != nil {
		return worklog.Worklog{}, worklog.ErrInvalidDateFormat
	}
	typ := worklog.Type(req.Type)

	existing, err := s.worklogRepo.GetByKey(ctx, date, req.GroupName, typ)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return worklog.Worklog{}, fmt.Errorf("failed to look up worklog: %w", err)
	}

	created, err := s.worklogRepo.Create(ctx, worklog.Worklog{
		Date:          date,
		GroupName:     req.GroupName,
		Type:          typ,
		Workers:       req.Workers,
		Status:        worklog.StatusDrafting,
		IsAutoCreated: req.IsAutoCreated,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return s.worklogRepo.GetByKey(ctx, date, req.GroupName, typ)
		}
		return worklog.Worklog{}, fmt.Errorf("failed to create worklog: %w", err)
	}

	return created, nil
}

// GetWorklog implements worklog.LifecycleService.
func (s *worklogServiceImpl) GetWorklog(ctx context.Context, id string) (worklog.Worklog, error) {
	log, err := s.worklogRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return worklog.Worklog{}, worklog.ErrWorklogNotFound
	}
	return log, err
}

// ListWorklogs implements worklog.LifecycleService.
func (s *worklogServiceImpl) ListWorklogs(ctx context.Context, filter worklog.Filter) ([]worklog.Worklog, int64, error) {
	return s.worklogRepo.List(ctx, filter)
}

// SaveWorkers implements worklog.LifecycleService.
func (s *worklogServiceImpl) SaveWorkers(ctx context.Context, id string, workers worklog.Workers) error {
	if err := s.requireEditable(ctx, id); err != nil {
		return err
	}
	return s.worklogRepo.UpdateWorkers(ctx, id, workers)
}

// SaveChannelLogs implements worklog.LifecycleService.
func (s *worklogServiceImpl) SaveChannelLogs(ctx context.Context, id string, logs map[string]worklog.ChannelLog, issues []worklog.SystemIssue) error {
	req := worklog.SaveChannelLogsRequest{ChannelLogs: logs, SystemIssues: issues}
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.requireEditable(ctx, id); err != nil {
		return err
	}
	return s.worklogRepo.UpdateChannelLogs(ctx, id, logs, issues)
}

// requireEditable rejects field-group saves once the record has left the
// drafting state. A locked or fully signed worklog only changes through the
// signature operations.
func (s *worklogServiceImpl) requireEditable(ctx context.Context, id string) error {
	log, err := s.worklogRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return worklog.ErrWorklogNotFound
	}
	if err != nil {
		return err
	}
	if log.Status != worklog.StatusDrafting {
		return worklog.ErrWorklogLocked
	}
	return nil
}

// Sign implements worklog.LifecycleService.
func (s *worklogServiceImpl) Sign(ctx context.Context, id string, role worklog.SignatureRole, actor worklog.Actor) (worklog.Worklog, error) {
	if !isKnownRole(role) {
		return worklog.Worklog{}, worklog.ErrInvalidRole
	}

	var updated worklog.Worklog
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		log, err := s.worklogRepo.GetByID(txCtx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.ErrWorklogNotFound
		}
		if err != nil {
			return err
		}

		if log.Signatures.Get(role) != nil {
			return worklog.ErrAlreadySigned
		}
		if err := s.checkSignPermission(role, actor); err != nil {
			return err
		}

		now := s.now().In(s.location)
		sig := worklog.FormatSignature(actor.Name, now)
		log.Signatures.Set(role, &sig)
		log.Status = worklog.DeriveStatus(log.Signatures, log.Date, log.Type, now)

		if err := s.worklogRepo.UpdateSignatures(txCtx, id, log.Signatures, log.Status); err != nil {
			return err
		}
		updated = log
		return nil
	})
	if err != nil {
		return worklog.Worklog{}, err
	}
	return updated, nil
}

// RemoveSignature implements worklog.LifecycleService. Ownership is checked
// before the permission tier so the error names the actual problem when
// someone tries to withdraw another person's signature.
func (s *worklogServiceImpl) RemoveSignature(ctx context.Context, id string, role worklog.SignatureRole, actor worklog.Actor) (worklog.Worklog, error) {
	if !isKnownRole(role) {
		return worklog.Worklog{}, worklog.ErrInvalidRole
	}

	var updated worklog.Worklog
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		log, err := s.worklogRepo.GetByID(txCtx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.ErrWorklogNotFound
		}
		if err != nil {
			return err
		}

		existing := log.Signatures.Get(role)
		if existing == nil {
			return worklog.ErrSignatureNotFound
		}
		if worklog.SignerName(*existing) != actor.Name {
			return worklog.NewPermissionError("본인의 서명만 취소할 수 있습니다")
		}
		if err := s.checkSignPermission(role, actor); err != nil {
			return err
		}

		log.Signatures.Set(role, nil)
		log.Status = worklog.DeriveStatus(log.Signatures, log.Date, log.Type, s.now().In(s.location))

		if err := s.worklogRepo.UpdateSignatures(txCtx, id, log.Signatures, log.Status); err != nil {
			return err
		}
		updated = log
		return nil
	})
	if err != nil {
		return worklog.Worklog{}, err
	}
	return updated, nil
}

// checkSignPermission enforces the two signature tiers. The operation slot
// belongs to the on-duty director; the three approval slots belong to support
// accounts.
func (s *worklogServiceImpl) checkSignPermission(role worklog.SignatureRole, actor worklog.Actor) error {
	if role == worklog.SignatureOperation {
		current := s.sessions.Current()
		if current == nil {
			return worklog.ErrNoSession
		}
		if !current.HasDirector(actor.ID) {
			return worklog.NewPermissionError("운영 서명은 현재 근무조의 감독만 할 수 있습니다")
		}
		return nil
	}

	if actor.AccountType != worklog.AccountTypeSupport {
		return worklog.NewPermissionError("결재 서명은 지원 계정만 할 수 있습니다")
	}
	return nil
}

// PromoteNextSession implements worklog.LifecycleService.
func (s *worklogServiceImpl) PromoteNextSession(ctx context.Context, actor worklog.Actor) error {
	current := s.sessions.Current()
	if current == nil {
		return worklog.ErrNoSession
	}
	if s.sessions.Next() == nil {
		return worklog.ErrNoNextSession
	}

	info := s.shiftSvc.LogicalShiftInfo(s.now())
	typ := shiftToWorklogType(info.Type)

	log, err := s.worklogRepo.GetByKey(ctx, info.Date, current.GroupName, typ)
	if errors.Is(err, pgx.ErrNoRows) {
		return worklog.ErrHandoverBlocked
	}
	if err != nil {
		return fmt.Errorf("failed to look up current worklog: %w", err)
	}
	if log.Signatures.Operation == nil {
		return worklog.ErrHandoverBlocked
	}

	promoted, ok := s.sessions.Promote()
	if !ok {
		return worklog.ErrNoNextSession
	}

	// The session has already switched; a failed audit write must not turn a
	// completed handover into an error for the caller.
	if err := s.auditRepo.Append(ctx, audit.Entry{
		UserID:     actor.ID,
		Action:     audit.ActionHandoverComplete,
		TargetType: audit.TargetSession,
		TargetID:   promoted.ID,
		Changes: map[string]interface{}{
			"from_group": current.GroupName,
			"to_group":   promoted.GroupName,
			"worklog_id": log.ID,
		},
	}); err != nil {
		slog.Error("Failed to record handover audit entry", "session_id", promoted.ID, "error", err)
	}
	return nil
}

// CancelHandover implements worklog.LifecycleService. The staged session is
// always discarded; the next shift's draft is deleted only when nothing of
// value would be lost with it.
func (s *worklogServiceImpl) CancelHandover(ctx context.Context, actor worklog.Actor) error {
	next := s.sessions.Next()
	if next == nil {
		return worklog.ErrNoNextSession
	}
	s.sessions.ClearNext()

	nextDate, nextType := nextShiftKey(s.shiftSvc.LogicalShiftInfo(s.now()))
	draftID := ""

	draft, err := s.worklogRepo.GetByKey(ctx, nextDate, next.GroupName, nextType)
	if err == nil && isDiscardableDraft(draft) {
		if err := s.worklogRepo.Delete(ctx, draft.ID); err != nil {
			return fmt.Errorf("failed to discard draft worklog: %w", err)
		}
		draftID = draft.ID
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to look up draft worklog: %w", err)
	}

	// Same as in PromoteNextSession: the staged session is already gone, so
	// the audit write cannot fail the cancellation.
	if err := s.auditRepo.Append(ctx, audit.Entry{
		UserID:     actor.ID,
		Action:     audit.ActionHandoverCancel,
		TargetType: audit.TargetSession,
		TargetID:   next.ID,
		Changes: map[string]interface{}{
			"cancelled_group":    next.GroupName,
			"deleted_worklog_id": draftID,
		},
	}); err != nil {
		slog.Error("Failed to record handover cancellation audit entry", "session_id", next.ID, "error", err)
	}
	return nil
}

func isDiscardableDraft(w worklog.Worklog) bool {
	return w.Status == worklog.StatusDrafting && !w.Signatures.Any() && !w.HasContent()
}

func isKnownRole(role worklog.SignatureRole) bool {
	for _, r := range worklog.SignatureRoles {
		if r == role {
			return true
		}
	}
	return false
}

func shiftToWorklogType(t shift.ShiftType) worklog.Type {
	if t == shift.ShiftTypeNight {
		return worklog.TypeNight
	}
	return worklog.TypeDay
}

// nextShiftKey returns the (date, type) of the shift that follows the one in
// progress: the same day's night shift after a day shift, the next day's day
// shift after a night shift.
func nextShiftKey(info shift.LogicalInfo) (time.Time, worklog.Type) {
	if info.Type == shift.ShiftTypeNight {
		return info.Date.AddDate(0, 0, 1), worklog.TypeDay
	}
	return info.Date, worklog.TypeNight
}
