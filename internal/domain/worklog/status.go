package worklog

import "time"

// ShiftEnd returns the scheduled end of a shift: 19:00 local for day shifts,
// 08:00 the next calendar day for night shifts.
func ShiftEnd(date time.Time, typ Type, loc *time.Location) time.Time {
	if typ == TypeDay {
		return time.Date(date.Year(), date.Month(), date.Day(), 19, 0, 0, 0, loc)
	}
	next := date.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 8, 0, 0, 0, loc)
}

// DeriveStatus recomputes a worklog's status from its signatures and the
// current instant. There is no dedicated cancelled state: removing a
// signature re-runs the same two checks.
func DeriveStatus(sigs Signatures, date time.Time, typ Type, now time.Time) Status {
	if sigs.AllSigned() {
		return StatusSigned
	}
	if sigs.Operation != nil && !now.Before(ShiftEnd(date, typ, now.Location())) {
		return StatusLocked
	}
	return StatusDrafting
}

// SanitizeStatus maps legacy stored statuses onto the three-state machine.
// Old rows may still carry 근무종료 or 서명완료; both collapse to drafting and the
// real status is re-derived from signatures.
func SanitizeStatus(s Status) Status {
	switch s {
	case statusLegacyShiftEnd, statusLegacySigned:
		return StatusDrafting
	case StatusDrafting, StatusLocked, StatusSigned:
		return s
	default:
		return StatusDrafting
	}
}
