package validator

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// Date validation (YYYY-MM-DD)
func IsValidDate(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}

// ParseDate parses a date string in "YYYY-MM-DD" format.
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// Timecode validation. Broadcast timecodes are HH:MM:SS:FF with frames
// counted at 29.97 fps NTSC, so the frame field runs 00-29.
var timecodeRegex = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2}):(\d{2})`)

const maxFrames = 29

// IsValidTimecode checks a bare HH:MM:SS:FF timecode.
func IsValidTimecode(tc string) bool {
	m := timecodeRegex.FindStringSubmatch(tc)
	if m == nil || m[0] != tc {
		return false
	}
	return timecodeFieldsValid(m)
}

// ContainsValidTimecode checks free text that embeds a timecode, e.g.
// "MBC12:34:56:00부터 정규1번".
func ContainsValidTimecode(text string) bool {
	m := timecodeRegex.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	return timecodeFieldsValid(m)
}

func timecodeFieldsValid(m []string) bool {
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	frames, _ := strconv.Atoi(m[4])

	if hours > 23 {
		return false
	}
	if minutes > 59 || seconds > 59 {
		return false
	}
	return frames <= maxFrames
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}
