package audit

import "time"

type Action string

const (
	ActionHandoverComplete Action = "HANDOVER_COMPLETE"
	ActionHandoverCancel   Action = "HANDOVER_CANCEL"
	ActionLogin            Action = "LOGIN"
	ActionLogout           Action = "LOGOUT"
)

type TargetType string

const (
	TargetSession TargetType = "SESSION"
	TargetAuth    TargetType = "AUTH"
	TargetWorklog TargetType = "WORKLOG"
)

// Entry is one append-only audit record. This service writes entries as a
// side effect of handover and auth actions and never reads them back.
type Entry struct {
	ID         string
	UserID     string
	Action     Action
	TargetType TargetType
	TargetID   string
	Changes    map[string]interface{}
	CreatedAt  time.Time
}
