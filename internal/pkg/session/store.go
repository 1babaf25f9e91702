// Package session holds the ephemeral on-duty state for the process: one
// current session and, while a handover is in progress, one next session.
// Login creates the current session, logout clears everything.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Member struct {
	UserID       string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	IsSubstitute bool   `json:"is_substitute,omitempty"`
}

type Session struct {
	ID        string    `json:"id"`
	GroupName string    `json:"group_name"`
	Members   []Member  `json:"members"`
	StartedAt time.Time `json:"started_at"`
}

// HasDirector reports whether the user holds a director role in this session.
func (s Session) HasDirector(userID string) bool {
	for _, m := range s.Members {
		if m.UserID == userID && strings.Contains(m.Role, "감독") {
			return true
		}
	}
	return false
}

type Store struct {
	mu      sync.RWMutex
	current *Session
	next    *Session
}

func NewStore() *Store {
	return &Store{}
}

// Begin starts a new current session at login and discards any previous state.
func (s *Store) Begin(groupName string, members []Member, startedAt time.Time) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:        uuid.NewString(),
		GroupName: groupName,
		Members:   append([]Member(nil), members...),
		StartedAt: startedAt,
	}
	s.current = sess
	s.next = nil
	return *sess
}

// SetNext stages the incoming session during a handover without ending the
// current one.
func (s *Store) SetNext(groupName string, members []Member, startedAt time.Time) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:        uuid.NewString(),
		GroupName: groupName,
		Members:   append([]Member(nil), members...),
		StartedAt: startedAt,
	}
	s.next = sess
	return *sess
}

// Current returns a copy of the current session, or nil when logged out.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.current)
}

// Next returns a copy of the staged next session, or nil.
func (s *Store) Next() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.next)
}

// Promote discards the current session, makes next the new current and clears
// next. Returns false when no next session is staged.
func (s *Store) Promote() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next == nil {
		return Session{}, false
	}
	s.current = s.next
	s.next = nil
	return *s.current, true
}

// ClearNext discards a staged next session when a handover is cancelled.
func (s *Store) ClearNext() {
	s.mu.Lock()
	s.next = nil
	s.mu.Unlock()
}

// Clear tears the whole store down at logout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = nil
	s.next = nil
	s.mu.Unlock()
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Members = append([]Member(nil), s.Members...)
	return &out
}
