package worklog

import "context"

// Actor is a confirmed identity: the authenticated requester for reads and
// autosaves, the PIN-confirmed user for signature and handover actions.
type Actor struct {
	ID          string
	Name        string
	AccountType string
}

// AccountTypeSupport marks administrative accounts allowed to write the
// team_leader / mcr / network signatures.
const AccountTypeSupport = "support"

type LifecycleService interface {
	// EnsureWorklog creates the record for (date, group, type) or redirects to
	// the existing one. At most one active worklog per key, even under racing
	// creations.
	EnsureWorklog(ctx context.Context, req EnsureRequest) (Worklog, error)

	GetWorklog(ctx context.Context, id string) (Worklog, error)
	ListWorklogs(ctx context.Context, filter Filter) ([]Worklog, int64, error)

	// SaveWorkers / SaveChannelLogs persist one field group each, merging
	// against the server's current row inside a transaction.
	SaveWorkers(ctx context.Context, id string, workers Workers) error
	SaveChannelLogs(ctx context.Context, id string, logs map[string]ChannelLog, issues []SystemIssue) error

	// Sign writes one signature slot and re-derives status. Operation requires
	// a director in the current session; the rest require a support account.
	Sign(ctx context.Context, id string, role SignatureRole, actor Actor) (Worklog, error)
	// RemoveSignature clears a slot after an ownership check (signer name must
	// match the actor) and the same permission tiers, then re-derives status.
	RemoveSignature(ctx context.Context, id string, role SignatureRole, actor Actor) (Worklog, error)

	// PromoteNextSession completes a handover: only reachable once the current
	// worklog carries the operation signature.
	PromoteNextSession(ctx context.Context, actor Actor) error
	// CancelHandover discards the prepared next session and deletes the next
	// shift's draft when it has no signatures and no content.
	CancelHandover(ctx context.Context, actor Actor) error
}
