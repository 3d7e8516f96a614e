package domain

import "time"

// Tenancy classes. A "creator" is a standalone user and never gets an
// Account row; "enterprise" tenants share one Account.
const (
	AccountTypeEnterprise = "enterprise"
	AccountTypeCreator    = "creator"
)

// DefaultEnterpriseSeats is the max-user quota applied when the enterprise
// account type is lazily created.
const DefaultEnterpriseSeats = 10

// AccountType identifies a tenancy class. Rows are created lazily on first
// use and are effectively immutable reference data afterwards.
type AccountType struct {
	ID          string
	Name        string
	Description string
	Active      bool
	MaxUsers    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Account is a tenant: an enterprise organisation sharing one pool of users.
// The ID is the generated public identifier handed out over the API.
type Account struct {
	ID            string
	AccountTypeID string
	Name          string // unique display name
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
