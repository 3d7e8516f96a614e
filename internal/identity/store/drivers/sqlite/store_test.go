package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/atticlabs/attic-auth/internal/identity/domain"
	"github.com/atticlabs/attic-auth/internal/identity/store"
	"github.com/atticlabs/attic-auth/pkg/idx"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedRole(t *testing.T, s *Store, name domain.RoleName) domain.Role {
	t.Helper()
	role, err := s.Roles().Ensure(context.Background(), domain.Role{
		ID:          idx.New().String(),
		Name:        name,
		Description: name.Description(),
		Permissions: name.Permissions(),
	})
	require.NoError(t, err)
	return role
}

func TestEnsureAccountTypeStableID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.AccountTypes().Ensure(ctx, domain.AccountType{
		ID:       idx.New().String(),
		Name:     domain.AccountTypeEnterprise,
		Active:   true,
		MaxUsers: domain.DefaultEnterpriseSeats,
	})
	require.NoError(t, err)

	second, err := s.AccountTypes().Ensure(ctx, domain.AccountType{
		ID:       idx.New().String(),
		Name:     domain.AccountTypeEnterprise,
		Active:   true,
		MaxUsers: domain.DefaultEnterpriseSeats,
	})
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, domain.DefaultEnterpriseSeats, second.MaxUsers)
}

func TestEnsureRoleStableID(t *testing.T) {
	s := newTestStore(t)

	first := seedRole(t, s, domain.RoleEnterpriseMember)
	second := seedRole(t, s, domain.RoleEnterpriseMember)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.Permissions, second.Permissions)
	require.True(t, second.Name.Can(domain.PermViewProjects))
}

func TestCreateAccountDuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	at, err := s.AccountTypes().Ensure(ctx, domain.AccountType{
		ID:       idx.New().String(),
		Name:     domain.AccountTypeEnterprise,
		Active:   true,
		MaxUsers: domain.DefaultEnterpriseSeats,
	})
	require.NoError(t, err)

	acc := domain.Account{
		ID:            idx.New().String(),
		AccountTypeID: at.ID,
		Name:          "Acme Corp",
		Active:        true,
	}
	require.NoError(t, s.Accounts().CreateAccount(ctx, acc))

	acc.ID = idx.New().String()
	err = s.Accounts().CreateAccount(ctx, acc)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.Accounts().GetAccountByName(ctx, "Acme Corp")
	require.NoError(t, err)
	require.NotEqual(t, acc.ID, got.ID)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role := seedRole(t, s, domain.RoleCreatorAdmin)

	u := domain.User{
		ID:        idx.New().String(),
		FirstName: "Jess",
		LastName:  "Park",
		Email:     "jess@example.com",
		RoleID:    role.ID,
		Status:    domain.StatusInvited,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	u.ID = idx.New().String()
	err := s.Users().CreateUser(ctx, u)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestConsumeResetTokenSingleUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role := seedRole(t, s, domain.RoleEnterpriseMember)

	u := domain.User{
		ID:        idx.New().String(),
		FirstName: "Sam",
		LastName:  "Lee",
		Email:     "sam@example.com",
		RoleID:    role.ID,
		Status:    domain.StatusInvited,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	require.NoError(t, s.Users().SetResetToken(ctx, u.ID, "tok-123", now.Add(time.Hour)))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "tok-123", got.ResetToken)
	require.NotNil(t, got.ResetTokenExpiresAt)

	ok, err := s.Users().ConsumeResetToken(ctx, u.ID, "tok-123", "hash-1", now)
	require.NoError(t, err)
	require.True(t, ok)

	// A second presentation of the same token finds nothing to consume.
	ok, err = s.Users().ConsumeResetToken(ctx, u.ID, "tok-123", "hash-2", now)
	require.NoError(t, err)
	require.False(t, ok)

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "hash-1", got.PasswordHash)
	require.Equal(t, domain.StatusActive, got.Status)
	require.Empty(t, got.ResetToken)
	require.Nil(t, got.ResetTokenExpiresAt)
}

func TestConsumeResetTokenMismatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role := seedRole(t, s, domain.RoleEnterpriseMember)

	u := domain.User{
		ID:        idx.New().String(),
		FirstName: "Ana",
		LastName:  "Diaz",
		Email:     "ana@example.com",
		RoleID:    role.ID,
		Status:    domain.StatusInvited,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	require.NoError(t, s.Users().SetResetToken(ctx, u.ID, "current", now.Add(time.Hour)))

	ok, err := s.Users().ConsumeResetToken(ctx, u.ID, "stale", "hash", now)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetResetTokenUnknownUser(t *testing.T) {
	s := newTestStore(t)

	err := s.Users().SetResetToken(context.Background(), idx.New().String(), "tok", time.Now().Add(time.Hour))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListUsersByAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	at, err := s.AccountTypes().Ensure(ctx, domain.AccountType{
		ID:       idx.New().String(),
		Name:     domain.AccountTypeEnterprise,
		Active:   true,
		MaxUsers: domain.DefaultEnterpriseSeats,
	})
	require.NoError(t, err)

	acc := domain.Account{ID: idx.New().String(), AccountTypeID: at.ID, Name: "Globex", Active: true}
	require.NoError(t, s.Accounts().CreateAccount(ctx, acc))

	role := seedRole(t, s, domain.RoleEnterpriseMember)

	for _, email := range []string{"a@globex.com", "b@globex.com"} {
		require.NoError(t, s.Users().CreateUser(ctx, domain.User{
			ID:        idx.New().String(),
			FirstName: "User",
			LastName:  "Globex",
			Email:     email,
			AccountID: acc.ID,
			RoleID:    role.ID,
			Status:    domain.StatusInvited,
		}))
	}

	// A creator without an account must not show up in any account listing.
	require.NoError(t, s.Users().CreateUser(ctx, domain.User{
		ID:        idx.New().String(),
		FirstName: "Solo",
		LastName:  "Creator",
		Email:     "solo@example.com",
		RoleID:    role.ID,
		Status:    domain.StatusInvited,
	}))

	users, err := s.Users().ListUsersByAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		require.Equal(t, acc.ID, u.AccountID)
	}
}

func TestRecordLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role := seedRole(t, s, domain.RoleCreatorAdmin)

	u := domain.User{
		ID:        idx.New().String(),
		FirstName: "Kim",
		LastName:  "Wu",
		Email:     "kim@example.com",
		RoleID:    role.ID,
		Status:    domain.StatusActive,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Users().RecordLogin(ctx, u.ID, at))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	require.WithinDuration(t, at, got.LastLoginAt.UTC(), time.Second)
}

func TestDeleteUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role := seedRole(t, s, domain.RoleEnterpriseMember)

	u := domain.User{
		ID:        idx.New().String(),
		FirstName: "Del",
		LastName:  "Gone",
		Email:     "del@example.com",
		RoleID:    role.ID,
		Status:    domain.StatusActive,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))

	_, err := s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role := seedRole(t, s, domain.RoleCreatorAdmin)

	boom := context.Canceled
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:        idx.New().String(),
			FirstName: "Tx",
			LastName:  "Roll",
			Email:     "tx@example.com",
			RoleID:    role.ID,
			Status:    domain.StatusInvited,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByEmail(ctx, "tx@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
