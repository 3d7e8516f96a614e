package domain

import "time"

// Status is a user's position in the credential lifecycle.
type Status string

const (
	StatusPending Status = "pending"
	StatusInvited Status = "invited"
	StatusActive  Status = "active"

	// StatusInactive is reserved for deactivation; no operation sets it yet.
	StatusInactive Status = "inactive"
)

// User is a principal. Enterprise users reference an Account; creators stand
// alone with an empty AccountID. The user exclusively owns its reset-token
// fields: ResetToken is set iff a password-setup or reset flow is
// outstanding, and it is cleared atomically by the password update that
// consumes it.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string // unique, stored lowercase
	PasswordHash string // temp-password hash until the invite is redeemed
	AccountID    string // empty for creators
	RoleID       string
	Status       Status

	ResetToken          string
	ResetTokenExpiresAt *time.Time
	LastLoginAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
