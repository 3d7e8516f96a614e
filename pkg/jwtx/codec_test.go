package jwtx_test

import (
	"testing"
	"time"

	"github.com/atticlabs/attic-auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := jwtx.New(nil, "attic-auth")
	require.ErrorIs(t, err, jwtx.ErrNoSecret)

	_, err = jwtx.New([]byte{}, "attic-auth")
	require.ErrorIs(t, err, jwtx.ErrNoSecret)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := jwtx.New([]byte("test-secret"), "attic-auth")
	require.NoError(t, err)

	token, err := codec.Issue("user-123", jwtx.SessionTokenTTL)
	require.NoError(t, err)

	subject, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", subject)
}

func TestVerifyFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	codec, err := jwtx.New([]byte("test-secret"), "attic-auth")
	require.NoError(t, err)

	other, err := jwtx.New([]byte("other-secret"), "attic-auth")
	require.NoError(t, err)

	// Signed with a different secret.
	forged, err := other.Issue("user-123", time.Minute)
	require.NoError(t, err)
	_, err = codec.Verify(forged)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)

	// Expired at the JWT level.
	expired, err := codec.Issue("user-123", -time.Minute)
	require.NoError(t, err)
	_, err = codec.Verify(expired)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)

	// Structurally malformed.
	_, err = codec.Verify("not-a-token")
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)

	_, err = codec.Verify("")
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyChecksIssuer(t *testing.T) {
	t.Parallel()

	minting, err := jwtx.New([]byte("test-secret"), "someone-else")
	require.NoError(t, err)

	codec, err := jwtx.New([]byte("test-secret"), "attic-auth")
	require.NoError(t, err)

	token, err := minting.Issue("user-123", time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}
