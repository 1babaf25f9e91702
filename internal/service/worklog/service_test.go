package worklog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/audit"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/shift"
	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/session"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = time.FixedZone("KST", 9*60*60)

type fakeWorklogRepo struct {
	mu         sync.Mutex
	byID       map[string]worklog.Worklog
	nextID     int
	hideLookup int // pending GetByKey calls that pretend the row is absent
}

func newFakeWorklogRepo() *fakeWorklogRepo {
	return &fakeWorklogRepo{byID: map[string]worklog.Worklog{}}
}

func (f *fakeWorklogRepo) key(date time.Time, group string, typ worklog.Type) string {
	return fmt.Sprintf("%s/%s/%s", date.Format("2006-01-02"), group, typ)
}

func (f *fakeWorklogRepo) Create(_ context.Context, log worklog.Worklog) (worklog.Worklog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.byID {
		if existing.DeletedAt == nil && f.key(existing.Date, existing.GroupName, existing.Type) == f.key(log.Date, log.GroupName, log.Type) {
			return worklog.Worklog{}, &pgconn.PgError{Code: "23505"}
		}
	}

	f.nextID++
	log.ID = fmt.Sprintf("wl-%d", f.nextID)
	log.CreatedAt = time.Now()
	log.UpdatedAt = log.CreatedAt
	f.byID[log.ID] = log
	return log, nil
}

func (f *fakeWorklogRepo) GetByID(_ context.Context, id string) (worklog.Worklog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.byID[id]
	if !ok || log.DeletedAt != nil {
		return worklog.Worklog{}, pgx.ErrNoRows
	}
	return log, nil
}

func (f *fakeWorklogRepo) GetByKey(_ context.Context, date time.Time, group string, typ worklog.Type) (worklog.Worklog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideLookup > 0 {
		f.hideLookup--
		return worklog.Worklog{}, pgx.ErrNoRows
	}
	for _, log := range f.byID {
		if log.DeletedAt == nil && f.key(log.Date, log.GroupName, log.Type) == f.key(date, group, typ) {
			return log, nil
		}
	}
	return worklog.Worklog{}, pgx.ErrNoRows
}

func (f *fakeWorklogRepo) List(_ context.Context, _ worklog.Filter) ([]worklog.Worklog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var logs []worklog.Worklog
	for _, log := range f.byID {
		if log.DeletedAt == nil {
			logs = append(logs, log)
		}
	}
	return logs, int64(len(logs)), nil
}

func (f *fakeWorklogRepo) UpdateWorkers(_ context.Context, id string, workers worklog.Workers) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.byID[id]
	if !ok {
		return worklog.ErrWorklogNotFound
	}
	log.Workers = workers
	f.byID[id] = log
	return nil
}

func (f *fakeWorklogRepo) UpdateChannelLogs(_ context.Context, id string, logs map[string]worklog.ChannelLog, issues []worklog.SystemIssue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.byID[id]
	if !ok {
		return worklog.ErrWorklogNotFound
	}
	log.ChannelLogs = logs
	log.SystemIssues = issues
	f.byID[id] = log
	return nil
}

func (f *fakeWorklogRepo) UpdateSignatures(_ context.Context, id string, sigs worklog.Signatures, status worklog.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.byID[id]
	if !ok {
		return worklog.ErrWorklogNotFound
	}
	log.Signatures = sigs
	log.Status = status
	f.byID[id] = log
	return nil
}

func (f *fakeWorklogRepo) UpdateStatus(_ context.Context, id string, status worklog.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.byID[id]
	if !ok {
		return worklog.ErrWorklogNotFound
	}
	log.Status = status
	f.byID[id] = log
	return nil
}

func (f *fakeWorklogRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return worklog.ErrWorklogNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeWorklogRepo) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.byID[id]
	if !ok {
		return worklog.ErrWorklogNotFound
	}
	now := time.Now()
	log.DeletedAt = &now
	f.byID[id] = log
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []audit.Entry
	failErr error
}

func (f *fakeAuditRepo) Append(_ context.Context, entry audit.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

// stubShift only answers LogicalShiftInfo; the embedded nil interface panics
// on anything else, which would flag an unexpected call.
type stubShift struct {
	shift.ShiftService
	info shift.LogicalInfo
}

func (s stubShift) LogicalShiftInfo(_ time.Time) shift.LogicalInfo { return s.info }

type testEnv struct {
	repo     *fakeWorklogRepo
	auditLog *fakeAuditRepo
	sessions *session.Store
	svc      *worklogServiceImpl
}

func newTestEnv(now time.Time, info shift.LogicalInfo) *testEnv {
	env := &testEnv{
		repo:     newFakeWorklogRepo(),
		auditLog: &fakeAuditRepo{},
		sessions: session.NewStore(),
	}
	env.svc = &worklogServiceImpl{
		worklogRepo: env.repo,
		auditRepo:   env.auditLog,
		shiftSvc:    stubShift{info: info},
		sessions:    env.sessions,
		location:    seoul,
		now:         func() time.Time { return now },
	}
	env.svc.runTx = func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		return fn(nil)
	}
	return env
}

func dayInfo(y int, m time.Month, d int) shift.LogicalInfo {
	return shift.LogicalInfo{
		Date: time.Date(y, m, d, 0, 0, 0, 0, seoul),
		Type: shift.ShiftTypeDay,
	}
}

func TestEnsureWorklogIdempotent(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 9, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	ctx := context.Background()

	req := worklog.EnsureRequest{
		Date:      "2025-11-06",
		GroupName: "1조",
		Type:      "주간",
		Workers:   worklog.Workers{Director: []string{"김감독"}},
	}

	first, err := env.svc.EnsureWorklog(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, worklog.StatusDrafting, first.Status)

	second, err := env.svc.EnsureWorklog(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureWorklogRecoversCreationRace(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 9, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	ctx := context.Background()

	req := worklog.EnsureRequest{Date: "2025-11-06", GroupName: "1조", Type: "주간"}
	first, err := env.svc.EnsureWorklog(ctx, req)
	require.NoError(t, err)

	// The next lookup misses even though the row exists, as happens when two
	// creators race. The insert hits the unique index and the existing record
	// is returned instead of an error.
	env.repo.hideLookup = 1
	second, err := env.svc.EnsureWorklog(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureWorklogValidation(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 9, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	ctx := context.Background()

	_, err := env.svc.EnsureWorklog(ctx, worklog.EnsureRequest{
		Date: "06-11-2025", GroupName: "1조", Type: "주간",
	})
	assert.Error(t, err)

	_, err = env.svc.EnsureWorklog(ctx, worklog.EnsureRequest{
		Date: "2025-11-06", GroupName: "1조", Type: "오후",
	})
	assert.Error(t, err)
}

func (e *testEnv) beginSession(t *testing.T) worklog.Worklog {
	t.Helper()
	e.sessions.Begin("1조", []session.Member{
		{UserID: "u1", Name: "김감독", Role: "감독"},
		{UserID: "u2", Name: "박부감", Role: "부감독"},
		{UserID: "u3", Name: "최영상", Role: "영상"},
	}, time.Date(2025, 11, 6, 7, 30, 0, 0, seoul))

	log, err := e.svc.EnsureWorklog(context.Background(), worklog.EnsureRequest{
		Date: "2025-11-06", GroupName: "1조", Type: "주간",
	})
	require.NoError(t, err)
	return log
}

func TestSignOperationPermissions(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 18, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	log := env.beginSession(t)
	ctx := context.Background()

	// Video operator cannot write the operation signature
	_, err := env.svc.Sign(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u3", Name: "최영상"})
	assert.ErrorIs(t, err, worklog.ErrPermissionDenied)

	// The assistant director counts as a director
	signed, err := env.svc.Sign(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u2", Name: "박부감"})
	require.NoError(t, err)
	require.NotNil(t, signed.Signatures.Operation)
	assert.Equal(t, "박부감|11/06 18:00", *signed.Signatures.Operation)

	// Signed at 18:00, before the 19:00 shift end: still drafting
	assert.Equal(t, worklog.StatusDrafting, signed.Status)
}

func TestSignOperationAfterShiftEndLocks(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 19, 5, 0, 0, seoul), dayInfo(2025, 11, 6))
	log := env.beginSession(t)

	signed, err := env.svc.Sign(context.Background(), log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u1", Name: "김감독"})
	require.NoError(t, err)
	assert.Equal(t, worklog.StatusLocked, signed.Status)
}

func TestSignOperationWithoutSession(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 18, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	log, err := env.svc.EnsureWorklog(context.Background(), worklog.EnsureRequest{
		Date: "2025-11-06", GroupName: "1조", Type: "주간",
	})
	require.NoError(t, err)

	_, err = env.svc.Sign(context.Background(), log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u1", Name: "김감독"})
	assert.ErrorIs(t, err, worklog.ErrNoSession)
}

func TestSignApprovalTierRequiresSupport(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 18, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	log := env.beginSession(t)
	ctx := context.Background()

	_, err := env.svc.Sign(ctx, log.ID, worklog.SignatureTeamLeader, worklog.Actor{ID: "u1", Name: "김감독"})
	assert.ErrorIs(t, err, worklog.ErrPermissionDenied)

	signed, err := env.svc.Sign(ctx, log.ID, worklog.SignatureTeamLeader, worklog.Actor{
		ID: "s1", Name: "강팀장", AccountType: worklog.AccountTypeSupport,
	})
	require.NoError(t, err)
	assert.NotNil(t, signed.Signatures.TeamLeader)
}

func TestSignAllFourCompletes(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 18, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	log := env.beginSession(t)
	ctx := context.Background()

	_, err := env.svc.Sign(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u1", Name: "김감독"})
	require.NoError(t, err)

	support := worklog.Actor{ID: "s1", Name: "강팀장", AccountType: worklog.AccountTypeSupport}
	for _, role := range []worklog.SignatureRole{worklog.SignatureTeamLeader, worklog.SignatureMCR} {
		_, err = env.svc.Sign(ctx, log.ID, role, support)
		require.NoError(t, err)
	}

	// All four present regardless of the 19:00 shift end
	final, err := env.svc.Sign(ctx, log.ID, worklog.SignatureNetwork, support)
	require.NoError(t, err)
	assert.Equal(t, worklog.StatusSigned, final.Status)
	assert.True(t, final.Signatures.AllSigned())
}

func TestSignDuplicateRejected(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 18, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	log := env.beginSession(t)
	ctx := context.Background()

	_, err := env.svc.Sign(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u1", Name: "김감독"})
	require.NoError(t, err)

	_, err = env.svc.Sign(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u2", Name: "박부감"})
	assert.ErrorIs(t, err, worklog.ErrAlreadySigned)
}

func TestRemoveSignatureOwnership(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 19, 5, 0, 0, seoul), dayInfo(2025, 11, 6))
	log := env.beginSession(t)
	ctx := context.Background()

	signed, err := env.svc.Sign(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u1", Name: "김감독"})
	require.NoError(t, err)
	assert.Equal(t, worklog.StatusLocked, signed.Status)

	// The other director cannot withdraw someone else's signature
	_, err = env.svc.RemoveSignature(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u2", Name: "박부감"})
	assert.ErrorIs(t, err, worklog.ErrPermissionDenied)

	// The signer can, and removal unlocks the record
	removed, err := env.svc.RemoveSignature(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u1", Name: "김감독"})
	require.NoError(t, err)
	assert.Nil(t, removed.Signatures.Operation)
	assert.Equal(t, worklog.StatusDrafting, removed.Status)

	_, err = env.svc.RemoveSignature(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u1", Name: "김감독"})
	assert.ErrorIs(t, err, worklog.ErrSignatureNotFound)
}

func TestPromoteNextSession(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 18, 40, 0, 0, seoul), dayInfo(2025, 11, 6))
	log := env.beginSession(t)
	ctx := context.Background()
	actor := worklog.Actor{ID: "u1", Name: "김감독"}

	// Nothing staged yet
	err := env.svc.PromoteNextSession(ctx, actor)
	assert.ErrorIs(t, err, worklog.ErrNoNextSession)

	env.sessions.SetNext("2조", []session.Member{
		{UserID: "u9", Name: "이감독", Role: "감독"},
	}, time.Date(2025, 11, 6, 18, 30, 0, 0, seoul))

	// Operation signature missing: handover blocked, next stays staged
	err = env.svc.PromoteNextSession(ctx, actor)
	assert.ErrorIs(t, err, worklog.ErrHandoverBlocked)
	assert.NotNil(t, env.sessions.Next())

	_, err = env.svc.Sign(ctx, log.ID, worklog.SignatureOperation, actor)
	require.NoError(t, err)

	err = env.svc.PromoteNextSession(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "2조", env.sessions.Current().GroupName)
	assert.Nil(t, env.sessions.Next())

	require.Len(t, env.auditLog.entries, 1)
	entry := env.auditLog.entries[0]
	assert.Equal(t, audit.ActionHandoverComplete, entry.Action)
	assert.Equal(t, "1조", entry.Changes["from_group"])
	assert.Equal(t, "2조", entry.Changes["to_group"])
}

func TestPromoteNextSessionSurvivesAuditFailure(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 18, 40, 0, 0, seoul), dayInfo(2025, 11, 6))
	log := env.beginSession(t)
	ctx := context.Background()
	actor := worklog.Actor{ID: "u1", Name: "김감독"}

	env.sessions.SetNext("2조", []session.Member{
		{UserID: "u9", Name: "이감독", Role: "감독"},
	}, time.Date(2025, 11, 6, 18, 30, 0, 0, seoul))

	_, err := env.svc.Sign(ctx, log.ID, worklog.SignatureOperation, actor)
	require.NoError(t, err)

	// Once the session has switched the handover is done; a broken audit
	// store must not report it as failed
	env.auditLog.failErr = fmt.Errorf("audit store unavailable")
	require.NoError(t, env.svc.PromoteNextSession(ctx, actor))
	assert.Equal(t, "2조", env.sessions.Current().GroupName)
	assert.Nil(t, env.sessions.Next())
}

func TestCancelHandoverDeletesEmptyDraft(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 18, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	env.beginSession(t)
	ctx := context.Background()
	actor := worklog.Actor{ID: "u1", Name: "김감독"}

	env.sessions.SetNext("2조", nil, time.Now())

	// The draft the next team would have worked in: same date, night shift
	draft, err := env.svc.EnsureWorklog(ctx, worklog.EnsureRequest{
		Date: "2025-11-06", GroupName: "2조", Type: "야간", IsAutoCreated: true,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.CancelHandover(ctx, actor))
	assert.Nil(t, env.sessions.Next())

	_, err = env.svc.GetWorklog(ctx, draft.ID)
	assert.ErrorIs(t, err, worklog.ErrWorklogNotFound)

	require.Len(t, env.auditLog.entries, 1)
	assert.Equal(t, audit.ActionHandoverCancel, env.auditLog.entries[0].Action)
}

func TestCancelHandoverKeepsDraftWithContent(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 18, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	env.beginSession(t)
	ctx := context.Background()

	env.sessions.SetNext("2조", nil, time.Now())

	draft, err := env.svc.EnsureWorklog(ctx, worklog.EnsureRequest{
		Date: "2025-11-06", GroupName: "2조", Type: "야간",
	})
	require.NoError(t, err)

	err = env.svc.SaveChannelLogs(ctx, draft.ID, map[string]worklog.ChannelLog{
		"MBC": {Posts: []worklog.ChannelPostRef{{ID: "p1", Summary: "정규1번 송출"}}},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, env.svc.CancelHandover(ctx, worklog.Actor{ID: "u1", Name: "김감독"}))

	// The draft carries content, so cancellation must not destroy it
	kept, err := env.svc.GetWorklog(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, kept.HasContent())
}

func TestCancelHandoverWithoutStagedSession(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 18, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	env.beginSession(t)

	err := env.svc.CancelHandover(context.Background(), worklog.Actor{ID: "u1", Name: "김감독"})
	assert.ErrorIs(t, err, worklog.ErrNoNextSession)
}

func TestSaveRejectedOnceLocked(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 19, 5, 0, 0, seoul), dayInfo(2025, 11, 6))
	log := env.beginSession(t)
	ctx := context.Background()

	// Operation signature after the 19:00 shift end locks the record
	signed, err := env.svc.Sign(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u1", Name: "김감독"})
	require.NoError(t, err)
	require.Equal(t, worklog.StatusLocked, signed.Status)

	err = env.svc.SaveWorkers(ctx, log.ID, worklog.Workers{Director: []string{"다른사람"}})
	assert.ErrorIs(t, err, worklog.ErrWorklogLocked)

	err = env.svc.SaveChannelLogs(ctx, log.ID, map[string]worklog.ChannelLog{
		"MBC": {Content: "잠긴 뒤의 수정"},
	}, nil)
	assert.ErrorIs(t, err, worklog.ErrWorklogLocked)

	// Withdrawing the signature reopens the record for edits
	_, err = env.svc.RemoveSignature(ctx, log.ID, worklog.SignatureOperation, worklog.Actor{ID: "u1", Name: "김감독"})
	require.NoError(t, err)
	assert.NoError(t, env.svc.SaveWorkers(ctx, log.ID, worklog.Workers{Director: []string{"김감독"}}))
}

func TestSaveChannelLogsValidatesTimecodes(t *testing.T) {
	env := newTestEnv(time.Date(2025, 11, 6, 10, 0, 0, 0, seoul), dayInfo(2025, 11, 6))
	log := env.beginSession(t)
	ctx := context.Background()

	err := env.svc.SaveChannelLogs(ctx, log.ID, map[string]worklog.ChannelLog{
		"MBC": {Timecodes: map[string]string{"0": "MBC12:34:56:45부터 정규1번"}},
	}, nil)
	assert.Error(t, err)

	err = env.svc.SaveChannelLogs(ctx, log.ID, map[string]worklog.ChannelLog{
		"MBC": {Timecodes: map[string]string{"0": "MBC12:34:56:15부터 정규1번"}},
	}, nil)
	assert.NoError(t, err)
}
