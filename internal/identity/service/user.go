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

// UserService handles membership inside an account: inviting members,
// profile reads, listings and removal.
type UserService struct {
	Store    store.Store
	Tokens   *jwtx.Codec
	Notifier notify.Sink

	Now func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Profile is a user with role and account resolved for display.
type Profile struct {
	User    domain.User
	Role    domain.Role
	Account *domain.Account
}

// Member is one row of an account listing.
type Member struct {
	User domain.User
	Role domain.Role
}

// AddUser invites a new member into the principal's account. Authorisation
// is checked before any write: the principal needs the invite capability and
// an account to invite into. The role defaults to enterprise member when the
// request names none.
func (s *UserService) AddUser(ctx context.Context, principal domain.Principal, firstName, lastName, email string, roleName domain.RoleName) (domain.User, error) {
	switch {
	case strings.TrimSpace(firstName) == "":
		return domain.User{}, missing("first_name")
	case strings.TrimSpace(lastName) == "":
		return domain.User{}, missing("last_name")
	case strings.TrimSpace(email) == "":
		return domain.User{}, missing("email")
	}
	if !principal.Can(domain.PermInviteUsers) || principal.Account == nil {
		return domain.User{}, ErrForbidden
	}
	email = strings.ToLower(strings.TrimSpace(email))

	target := domain.RoleEnterpriseMember
	if roleName != "" {
		if !roleName.Valid() {
			return domain.User{}, missing("role")
		}
		target = roleName
	}
	role, err := s.Store.Roles().Ensure(ctx, domain.Role{
		ID:          idx.New().String(),
		Name:        target,
		Description: target.Description(),
		Permissions: target.Permissions(),
	})
	if err != nil {
		return domain.User{}, err
	}

	tempPassword, err := cryptox.GenerateTempPassword()
	if err != nil {
		return domain.User{}, err
	}
	hash, err := cryptox.HashPassword(tempPassword)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		AccountID:    principal.Account.ID,
		RoleID:       role.ID,
		Status:       domain.StatusInvited,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	token, err := issueSetupToken(ctx, s.Store, s.Tokens, user.ID, s.now())
	if err != nil {
		return domain.User{}, err
	}
	if err := s.Notifier.SendInvitation(ctx, user.Email, token, user.FirstName); err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("member invited",
		slog.String("user_id", user.ID),
		slog.String("account_id", user.AccountID),
		slog.String("invited_by", principal.User.ID),
	)
	return user, nil
}

// GetProfile returns a user with role and account resolved.
func (s *UserService) GetProfile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}

	role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return Profile{}, err
	}

	var account *domain.Account
	if user.AccountID != "" {
		acc, err := s.Store.Accounts().GetAccountByID(ctx, user.AccountID)
		if err != nil {
			return Profile{}, err
		}
		account = &acc
	}
	return Profile{User: user, Role: role, Account: account}, nil
}

// ListAccountUsers returns the principal's account members with admins
// filtered out. Viewing requires the view capability and an account.
func (s *UserService) ListAccountUsers(ctx context.Context, principal domain.Principal) ([]Member, error) {
	if !principal.Can(domain.PermViewUsers) || principal.Account == nil {
		return nil, ErrForbidden
	}

	users, err := s.Store.Users().ListUsersByAccount(ctx, principal.Account.ID)
	if err != nil {
		return nil, err
	}

	roles := map[string]domain.Role{}
	var members []Member
	for _, u := range users {
		role, ok := roles[u.RoleID]
		if !ok {
			role, err = s.Store.Roles().GetRoleByID(ctx, u.RoleID)
			if err != nil {
				return nil, err
			}
			roles[u.RoleID] = role
		}
		if role.Name == domain.RoleEnterpriseAdmin {
			continue
		}
		members = append(members, Member{User: u, Role: role})
	}
	return members, nil
}

// DeleteUser removes a user and with it every outstanding session token for
// that user, since access checks resolve the user on each request.
//
// Admins with the manage capability delete members of their own account by
// email, except peers holding their own role. Everyone else may only delete
// themselves; any target email on such a request is ignored.
func (s *UserService) DeleteUser(ctx context.Context, principal domain.Principal, targetEmail string) (string, error) {
	log := slogx.FromContext(ctx)

	if principal.Can(domain.PermManageUsers) && principal.Account != nil {
		if strings.TrimSpace(targetEmail) == "" {
			return "", missing("email")
		}
		targetEmail = strings.ToLower(strings.TrimSpace(targetEmail))

		target, err := s.Store.Users().GetUserByEmail(ctx, targetEmail)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", ErrUserNotFound
			}
			return "", err
		}
		if target.AccountID != principal.Account.ID {
			return "", ErrUserNotFound
		}
		if target.RoleID == principal.Role.ID {
			return "", ErrForbidden
		}
		if err := s.Store.Users().DeleteUser(ctx, target.ID); err != nil {
			return "", err
		}
		log.Info("user deleted",
			slog.String("user_id", target.ID),
			slog.String("deleted_by", principal.User.ID),
		)
		return target.ID, nil
	}

	if principal.Role.Name == domain.RoleEnterpriseMember || principal.Role.Name == domain.RoleCreatorAdmin {
		if err := s.Store.Users().DeleteUser(ctx, principal.User.ID); err != nil {
			return "", err
		}
		log.Info("user self-deleted", slog.String("user_id", principal.User.ID))
		return principal.User.ID, nil
	}

	return "", ErrForbidden
}
