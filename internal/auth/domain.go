// Package auth owns authentication identities and login sessions. Identities
// live in their own table, deliberately separate from user profiles: the two
// are mutated by independent calls with no shared transaction, and the
// reconciliation jobs exist to heal the gap when one side fails.
package auth

import "time"

// Identity represents an authentication identity backing a user profile.
type Identity struct {
	UserID       string
	Email        string
	PasswordHash string
	SetupToken   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
