package store

import (
	"context"
	"errors"
	"time"

	"github.com/atticlabs/attic-auth/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable. The store is the sole point of synchronisation in the
// service: lazy reference-data creation and single-use token consumption
// rely on its conditional-write primitives rather than in-process locks.
type Store interface {
	Users() Users
	Accounts() Accounts
	AccountTypes() AccountTypes
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by the unique lowercase email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// DeleteUser removes the user. Deletion is the only revocation
	// mechanism for outstanding session tokens.
	DeleteUser(ctx context.Context, id string) error

	// ListUsersByAccount returns every user linked to the account.
	ListUsersByAccount(ctx context.Context, accountID string) ([]domain.User, error)

	// SetResetToken stores a freshly issued action token and its store-side
	// expiry on the user, replacing any outstanding one.
	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error

	// ConsumeResetToken atomically sets the password hash, flips status to
	// active and clears both token fields — but only if the stored token
	// still equals the presented one. It reports whether a row was
	// consumed; false means a concurrent request got there first.
	ConsumeResetToken(ctx context.Context, userID, token, passwordHash string, at time.Time) (bool, error)

	// RecordLogin stamps last_login_at.
	RecordLogin(ctx context.Context, userID string, at time.Time) error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByName looks up by the unique display name.
	GetAccountByName(ctx context.Context, name string) (domain.Account, error)

	// CreateAccount inserts a new account. Returns ErrAlreadyExists when
	// the name is taken.
	CreateAccount(ctx context.Context, a domain.Account) error
}

type AccountTypes interface {
	// Ensure creates the account type if no row with that name exists and
	// returns the canonical row either way. Backed by a unique-constraint
	// guarded insert so concurrent first calls cannot both create.
	Ensure(ctx context.Context, t domain.AccountType) (domain.AccountType, error)

	// GetAccountTypeByName looks up by the unique type name.
	GetAccountTypeByName(ctx context.Context, name string) (domain.AccountType, error)
}

type Roles interface {
	// Ensure creates the role if no row with that name exists and returns
	// the canonical row either way. Same race-safety contract as
	// AccountTypes.Ensure.
	Ensure(ctx context.Context, r domain.Role) (domain.Role, error)

	// GetRoleByID fetches a role by its ID.
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	// GetRoleByName fetches a role by its name.
	GetRoleByName(ctx context.Context, name domain.RoleName) (domain.Role, error)
}
