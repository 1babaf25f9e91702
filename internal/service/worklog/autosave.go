package worklog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/worklog"
)

// Autosaver coalesces rapid edits into debounced writes, at most one write
// per worklog in flight. Queueing again before the timer fires replaces the
// pending payload; queueing during a write schedules one more write after it
// settles, so only the latest state reaches the store.
type Autosaver struct {
	svc      worklog.LifecycleService
	debounce time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	pending map[string]*pendingSave
	closed  bool
	wg      sync.WaitGroup
}

type pendingSave struct {
	timer *time.Timer

	// inFlight marks that a write for this worklog is currently running.
	// Payloads queued in the meantime stay in the entry and are written
	// after the running write returns, so an older payload can never land
	// on top of a newer one.
	inFlight bool

	workers    *worklog.Workers
	channels   map[string]worklog.ChannelLog
	issues     []worklog.SystemIssue
	hasChannel bool
}

func NewAutosaver(svc worklog.LifecycleService, debounce time.Duration) *Autosaver {
	return &Autosaver{
		svc:      svc,
		debounce: debounce,
		timeout:  10 * time.Second,
		pending:  make(map[string]*pendingSave),
	}
}

// QueueWorkers schedules a debounced workers save for the worklog.
func (a *Autosaver) QueueWorkers(id string, workers worklog.Workers) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	p := a.pendingLocked(id)
	p.workers = &workers
	p.timer.Reset(a.debounce)
}

// QueueChannelLogs schedules a debounced channel log save for the worklog.
func (a *Autosaver) QueueChannelLogs(id string, logs map[string]worklog.ChannelLog, issues []worklog.SystemIssue) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	p := a.pendingLocked(id)
	p.channels = logs
	p.issues = issues
	p.hasChannel = true
	p.timer.Reset(a.debounce)
}

// Flush writes every pending payload immediately. Called before handover and
// logout so no buffered edit is lost with the session.
func (a *Autosaver) Flush(ctx context.Context) {
	a.mu.Lock()
	ids := make([]string, 0, len(a.pending))
	for id, p := range a.pending {
		p.timer.Stop()
		ids = append(ids, id)
	}
	a.mu.Unlock()

	for _, id := range ids {
		a.fire(ctx, id)
	}
}

// Close stops all timers, flushes what was pending and rejects further
// queueing.
func (a *Autosaver) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	a.Flush(context.Background())
	a.wg.Wait()
}

// pendingLocked returns the pending entry for id, creating it with a stopped
// timer on first use. Caller holds a.mu.
func (a *Autosaver) pendingLocked(id string) *pendingSave {
	p, ok := a.pending[id]
	if ok {
		return p
	}

	p = &pendingSave{}
	p.timer = time.AfterFunc(a.debounce, func() {
		// Register with the WaitGroup under the mutex so Close either sees
		// this write and waits for it, or has already flushed the payload.
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return
		}
		a.wg.Add(1)
		a.mu.Unlock()
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		a.fire(ctx, id)
	})
	p.timer.Stop()
	a.pending[id] = p
	return p
}

// fire writes the pending payload for id, then loops in case a newer edit
// arrived while the write was running. Only one write per worklog runs at a
// time; failures are logged and dropped, the next edit queues a fresh save
// with the newer state.
func (a *Autosaver) fire(ctx context.Context, id string) {
	for {
		a.mu.Lock()
		p, ok := a.pending[id]
		if !ok || p.inFlight {
			a.mu.Unlock()
			return
		}
		if p.workers == nil && !p.hasChannel {
			delete(a.pending, id)
			a.mu.Unlock()
			return
		}
		p.inFlight = true
		workers := p.workers
		channels, issues, hasChannel := p.channels, p.issues, p.hasChannel
		p.workers, p.channels, p.issues, p.hasChannel = nil, nil, nil, false
		a.mu.Unlock()

		if workers != nil {
			if err := a.svc.SaveWorkers(ctx, id, *workers); err != nil {
				slog.Error("Autosave: failed to save workers", "worklog_id", id, "error", err)
			}
		}
		if hasChannel {
			if err := a.svc.SaveChannelLogs(ctx, id, channels, issues); err != nil {
				slog.Error("Autosave: failed to save channel logs", "worklog_id", id, "error", err)
			}
		}

		a.mu.Lock()
		p.inFlight = false
		a.mu.Unlock()
	}
}
