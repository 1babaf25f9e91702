package worklog

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeDay   Type = "주간"
	TypeNight Type = "야간"
)

var TypeValues = []string{string(TypeDay), string(TypeNight)}

type Status string

const (
	// StatusDrafting: initial state, any subset of signatures may be missing.
	StatusDrafting Status = "작성중"
	// StatusLocked: operation signed and the shift's scheduled end has passed.
	StatusLocked Status = "일지확정"
	// StatusSigned: all four signatures present, regardless of time.
	StatusSigned Status = "결재완료"

	// Legacy statuses still present in old rows; sanitized on read.
	statusLegacyShiftEnd Status = "근무종료"
	statusLegacySigned   Status = "서명완료"
)

type SignatureRole string

const (
	SignatureOperation  SignatureRole = "operation"
	SignatureTeamLeader SignatureRole = "team_leader"
	SignatureMCR        SignatureRole = "mcr"
	SignatureNetwork    SignatureRole = "network"
)

var SignatureRoles = []SignatureRole{
	SignatureOperation, SignatureTeamLeader, SignatureMCR, SignatureNetwork,
}

// Signatures holds the four sign-off slots, each either nil or "name|MM/dd HH:mm".
type Signatures struct {
	Operation  *string `json:"operation"`
	TeamLeader *string `json:"team_leader"`
	MCR        *string `json:"mcr"`
	Network    *string `json:"network"`
}

func (s Signatures) Get(role SignatureRole) *string {
	switch role {
	case SignatureOperation:
		return s.Operation
	case SignatureTeamLeader:
		return s.TeamLeader
	case SignatureMCR:
		return s.MCR
	case SignatureNetwork:
		return s.Network
	}
	return nil
}

func (s *Signatures) Set(role SignatureRole, value *string) {
	switch role {
	case SignatureOperation:
		s.Operation = value
	case SignatureTeamLeader:
		s.TeamLeader = value
	case SignatureMCR:
		s.MCR = value
	case SignatureNetwork:
		s.Network = value
	}
}

func (s Signatures) Count() int {
	n := 0
	for _, role := range SignatureRoles {
		if s.Get(role) != nil {
			n++
		}
	}
	return n
}

func (s Signatures) AllSigned() bool {
	return s.Count() == len(SignatureRoles)
}

func (s Signatures) Any() bool {
	return s.Count() > 0
}

// FormatSignature builds the stored "name|MM/dd HH:mm" signature string.
func FormatSignature(name string, at time.Time) string {
	return fmt.Sprintf("%s|%s", name, at.Format("01/02 15:04"))
}

// SignerName extracts the signer from a stored signature string.
func SignerName(signature string) string {
	name, _, _ := strings.Cut(signature, "|")
	return name
}

type Workers struct {
	Director  []string `json:"director"`
	Assistant []string `json:"assistant"`
	Video     []string `json:"video"`
}

// ChannelPostRef links a channel log to a post record.
type ChannelPostRef struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// ChannelLog is one channel's worth of posts and timecode entries. Timecodes
// are keyed by slot index, e.g. {"0": "MBC12:34:56:00부터 정규1번"}.
type ChannelLog struct {
	Content   string            `json:"content,omitempty"`
	Posts     []ChannelPostRef  `json:"posts"`
	Timecodes map[string]string `json:"timecodes"`
}

type SystemIssue struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// Worklog is the daily work-log record, unique per (date, group, type) among
// non-deleted rows.
type Worklog struct {
	ID            string
	Date          time.Time
	GroupName     string
	Type          Type
	Workers       Workers
	ChannelLogs   map[string]ChannelLog
	SystemIssues  []SystemIssue
	Signatures    Signatures
	Status        Status
	IsAutoCreated bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// HasContent reports whether the record carries any channel posts or system
// issues. Signature-free, content-free drafts are eligible for cleanup when a
// handover is cancelled.
func (w Worklog) HasContent() bool {
	for _, cl := range w.ChannelLogs {
		if len(cl.Posts) > 0 {
			return true
		}
	}
	return len(w.SystemIssues) > 0
}
