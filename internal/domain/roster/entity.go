package roster

import (
	"strings"
	"time"
)

// User is an account in the users table. AccountType "support" marks
// administrative accounts; Role is a comma-separated list of duty roles with
// the primary role first, e.g. "감독,부감독".
type User struct {
	ID          string
	Name        string
	Role        string
	AccountType string
	PinHash     string
	CreatedAt   time.Time
}

// PrimaryRole returns the first entry of the comma-separated role list.
func (u User) PrimaryRole() string {
	primary, _, _ := strings.Cut(u.Role, ",")
	return strings.TrimSpace(primary)
}

// IsDirector reports whether any of the user's roles includes 감독.
func (u User) IsDirector() bool {
	return strings.Contains(u.Role, "감독")
}

// GroupMember is one row of the live group membership, the fallback roster
// source when a pattern config carries no snapshot for the team.
type GroupMember struct {
	UserID       string
	Name         string
	Role         string
	AccountType  string
	DisplayOrder int
}
