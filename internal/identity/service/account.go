package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/atticlabs/attic-auth/internal/identity/domain"
	"github.com/atticlabs/attic-auth/internal/identity/notify"
	"github.com/atticlabs/attic-auth/internal/identity/store"
	"github.com/atticlabs/attic-auth/pkg/cryptox"
	"github.com/atticlabs/attic-auth/pkg/idx"
	"github.com/atticlabs/attic-auth/pkg/jwtx"
	"github.com/atticlabs/attic-auth/pkg/slogx"
)

// AccountService handles account provisioning: enterprise accounts, their
// superusers, and standalone creator sign-ups.
type AccountService struct {
	Store    store.Store
	Tokens   *jwtx.Codec
	Notifier notify.Sink

	// Now is the clock used for token expiry stamps. Nil means real time.
	Now func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Invitation is the result of provisioning a user who must still choose a
// password. TempPassword is plaintext and is returned exactly once; only its
// hash is stored.
type Invitation struct {
	User         domain.User
	TempPassword string
}

// CreateEnterpriseAccount provisions a tenant account. The enterprise
// account type row is created lazily on first use with its default seat
// quota. No users are created here; a superuser follows separately.
func (s *AccountService) CreateEnterpriseAccount(ctx context.Context, name string) (domain.Account, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Account{}, missing("account_name")
	}

	accountType, err := s.Store.AccountTypes().Ensure(ctx, domain.AccountType{
		ID:       idx.New().String(),
		Name:     domain.AccountTypeEnterprise,
		Active:   true,
		MaxUsers: domain.DefaultEnterpriseSeats,
	})
	if err != nil {
		return domain.Account{}, err
	}

	account := domain.Account{
		ID:            idx.New().String(),
		AccountTypeID: accountType.ID,
		Name:          name,
		Active:        true,
	}
	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrAccountExists
		}
		return domain.Account{}, err
	}

	slogx.FromContext(ctx).Info("enterprise account created",
		slog.String("account_id", account.ID),
		slog.String("account_name", account.Name),
	)
	return account, nil
}

// InviteCreator provisions a standalone creator: a user with the creator
// admin role, no account link, a hashed temporary password, and an emailed
// setup token. A notification failure fails the call; the caller may retry,
// which surfaces ErrEmailTaken from the existing row.
func (s *AccountService) InviteCreator(ctx context.Context, firstName, lastName, email string) (Invitation, error) {
	switch {
	case strings.TrimSpace(firstName) == "":
		return Invitation{}, missing("first_name")
	case strings.TrimSpace(lastName) == "":
		return Invitation{}, missing("last_name")
	case strings.TrimSpace(email) == "":
		return Invitation{}, missing("email")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	role, err := s.roleRecord(ctx, domain.RoleCreatorAdmin)
	if err != nil {
		return Invitation{}, err
	}

	tempPassword, err := cryptox.GenerateTempPassword()
	if err != nil {
		return Invitation{}, err
	}
	hash, err := cryptox.HashPassword(tempPassword)
	if err != nil {
		return Invitation{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Status:       domain.StatusInvited,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return Invitation{}, ErrEmailTaken
		}
		return Invitation{}, err
	}

	token, err := issueSetupToken(ctx, s.Store, s.Tokens, user.ID, s.now())
	if err != nil {
		return Invitation{}, err
	}
	if err := s.Notifier.SendInvitation(ctx, user.Email, token, user.FirstName); err != nil {
		return Invitation{}, err
	}

	slogx.FromContext(ctx).Info("creator invited", slog.String("user_id", user.ID))
	return Invitation{User: user, TempPassword: tempPassword}, nil
}

// CreateSuperuser provisions the enterprise admin for an existing account,
// identified by its unique name. The flow mirrors InviteCreator but links
// the user to the account and grants the admin role.
func (s *AccountService) CreateSuperuser(ctx context.Context, firstName, lastName, email, accountName string) (Invitation, error) {
	switch {
	case strings.TrimSpace(firstName) == "":
		return Invitation{}, missing("first_name")
	case strings.TrimSpace(lastName) == "":
		return Invitation{}, missing("last_name")
	case strings.TrimSpace(email) == "":
		return Invitation{}, missing("email")
	case strings.TrimSpace(accountName) == "":
		return Invitation{}, missing("account_name")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.Store.Accounts().GetAccountByName(ctx, accountName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Invitation{}, ErrAccountNotFound
		}
		return Invitation{}, err
	}

	role, err := s.roleRecord(ctx, domain.RoleEnterpriseAdmin)
	if err != nil {
		return Invitation{}, err
	}

	tempPassword, err := cryptox.GenerateTempPassword()
	if err != nil {
		return Invitation{}, err
	}
	hash, err := cryptox.HashPassword(tempPassword)
	if err != nil {
		return Invitation{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		AccountID:    account.ID,
		RoleID:       role.ID,
		Status:       domain.StatusInvited,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return Invitation{}, ErrEmailTaken
		}
		return Invitation{}, err
	}

	token, err := issueSetupToken(ctx, s.Store, s.Tokens, user.ID, s.now())
	if err != nil {
		return Invitation{}, err
	}
	if err := s.Notifier.SendInvitation(ctx, user.Email, token, user.FirstName); err != nil {
		return Invitation{}, err
	}

	slogx.FromContext(ctx).Info("superuser created",
		slog.String("user_id", user.ID),
		slog.String("account_id", account.ID),
	)
	return Invitation{User: user, TempPassword: tempPassword}, nil
}

// roleRecord returns the persisted role row for the name, creating it lazily
// with its canonical permission set.
func (s *AccountService) roleRecord(ctx context.Context, name domain.RoleName) (domain.Role, error) {
	return s.Store.Roles().Ensure(ctx, domain.Role{
		ID:          idx.New().String(),
		Name:        name,
		Description: name.Description(),
		Permissions: name.Permissions(),
	})
}
