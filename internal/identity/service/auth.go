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
	"github.com/atticlabs/attic-auth/pkg/jwtx"
	"github.com/atticlabs/attic-auth/pkg/slogx"
)

// Token status codes surfaced by VerifyResetToken. The distinction exists so
// the front end can offer "request a new link" only when a fresh one would
// actually help.
const (
	CodeTokenUsed    = "TOKEN_USED"
	CodeTokenExpired = "TOKEN_EXPIRED"
)

// AuthService handles credential checks and the password set/reset token
// lifecycle.
type AuthService struct {
	Store    store.Store
	Tokens   *jwtx.Codec
	Notifier notify.Sink

	// Now is the clock used for expiry checks and login stamps. Nil means
	// real time.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Session is an authenticated login result.
type Session struct {
	Token   string
	User    domain.User
	Role    domain.Role
	Account *domain.Account // nil for creators
}

// TokenStatus is the outcome of a reset-token preflight check.
type TokenStatus struct {
	Valid bool
	Code  string // empty when valid
}

// Login verifies credentials and mints a session token. Unknown email and
// wrong password return the same ErrInvalidCredentials so callers cannot
// probe which addresses are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	switch {
	case strings.TrimSpace(email) == "":
		return Session{}, missing("email")
	case password == "":
		return Session{}, missing("password")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return Session{}, err
	}

	var account *domain.Account
	if user.AccountID != "" {
		acc, err := s.Store.Accounts().GetAccountByID(ctx, user.AccountID)
		if err != nil {
			return Session{}, err
		}
		account = &acc
	}

	token, err := s.Tokens.Issue(user.ID, jwtx.SessionTokenTTL)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	if err := s.Store.Users().RecordLogin(ctx, user.ID, now); err != nil {
		return Session{}, err
	}
	user.LastLoginAt = &now

	slogx.FromContext(ctx).Info("login", slog.String("user_id", user.ID))
	return Session{Token: token, User: user, Role: role, Account: account}, nil
}

// ForgotPassword issues a reset token and emails it. An unknown email is
// reported as success so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return missing("email")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := issueSetupToken(ctx, s.Store, s.Tokens, user.ID, s.now())
	if err != nil {
		return err
	}
	if err := s.Notifier.SendReset(ctx, user.Email, token, user.FirstName); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset issued", slog.String("user_id", user.ID))
	return nil
}

// VerifyResetToken is a read-only preflight for the password form. It never
// returns a domain error: every failure collapses into a TokenStatus, with
// TOKEN_EXPIRED reserved for tokens that were current but aged out.
func (s *AuthService) VerifyResetToken(ctx context.Context, token string) (TokenStatus, error) {
	if token == "" {
		return TokenStatus{Valid: false, Code: CodeTokenUsed}, nil
	}

	userID, err := s.Tokens.Verify(token)
	if err != nil {
		return TokenStatus{Valid: false, Code: CodeTokenUsed}, nil
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenStatus{Valid: false, Code: CodeTokenUsed}, nil
		}
		return TokenStatus{}, err
	}
	if user.ResetToken != token {
		return TokenStatus{Valid: false, Code: CodeTokenUsed}, nil
	}
	if user.ResetTokenExpiresAt == nil || s.now().After(*user.ResetTokenExpiresAt) {
		return TokenStatus{Valid: false, Code: CodeTokenExpired}, nil
	}
	return TokenStatus{Valid: true}, nil
}

// SetPassword redeems an action token: it verifies the signature, checks the
// persisted copy, and atomically stores the new hash while activating the
// user and clearing the token. A racing redemption of the same token loses
// with ErrTokenUsed.
func (s *AuthService) SetPassword(ctx context.Context, token, password string) error {
	switch {
	case token == "":
		return missing("token")
	case password == "":
		return missing("password")
	}

	userID, err := s.Tokens.Verify(token)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTokenUsed
		}
		return err
	}
	if user.ResetToken != token {
		return ErrTokenUsed
	}

	now := s.now()
	if user.ResetTokenExpiresAt == nil || now.After(*user.ResetTokenExpiresAt) {
		return ErrTokenExpired
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	ok, err := s.Store.Users().ConsumeResetToken(ctx, user.ID, token, hash, now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenUsed
	}

	slogx.FromContext(ctx).Info("password set", slog.String("user_id", user.ID))
	return nil
}
