package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token TTLs for the two logical token classes the service issues. Both are
// minted by the same codec; action tokens are additionally persisted on the
// user record so they can be revoked store-side.
const (
	// SessionTokenTTL is the lifetime of a bearer token identifying an
	// authenticated principal.
	SessionTokenTTL = 7 * 24 * time.Hour

	// ActionTokenTTL is the lifetime of a single-use token authorising
	// exactly one password-set operation (invites and resets).
	ActionTokenTTL = time.Hour
)

var (
	// ErrNoSecret reports a missing signing secret. Callers treat this as
	// fatal at startup; there is no recovery path.
	ErrNoSecret = errors.New("jwtx: signing secret is empty")

	// ErrInvalidToken covers every verification failure. Signature
	// mismatch, malformed input and embedded expiry all collapse into this
	// one error so callers cannot tell which check failed.
	ErrInvalidToken = errors.New("jwtx: invalid token")
)

// Codec signs and verifies HS256 tokens with a single process-wide secret.
// The secret is read-only after construction; a Codec is safe for
// concurrent use.
type Codec struct {
	secret []byte
	issuer string
}

// New builds a Codec. An empty secret is refused so the process fails at
// startup rather than minting unverifiable tokens.
func New(secret []byte, issuer string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &Codec{secret: secret, issuer: issuer}, nil
}

// Issue mints a signed token embedding the subject id and the issued/expiry
// timestamps.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks the signature and embedded expiry and returns the subject
// id. All failures are reported as ErrInvalidToken.
func (c *Codec) Verify(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
