package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/atticlabs/attic-auth/internal/identity/notify"
	"github.com/atticlabs/attic-auth/internal/identity/store"
	"github.com/atticlabs/attic-auth/internal/identity/store/drivers/sqlite"
	"github.com/atticlabs/attic-auth/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

// fakeClock is an advanceable clock for store-side expiry tests. Issued
// JWTs still carry real timestamps; only the persisted expiry moves.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now().UTC()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store    store.Store
	codec    *jwtx.Codec
	recorder *notify.Recorder
	clock    *fakeClock

	accounts *AccountService
	auth     *AuthService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.New([]byte("test-secret"), "attic-auth")
	require.NoError(t, err)

	recorder := &notify.Recorder{}
	clock := newFakeClock()

	return &testEnv{
		store:    st,
		codec:    codec,
		recorder: recorder,
		clock:    clock,
		accounts: &AccountService{Store: st, Tokens: codec, Notifier: recorder, Now: clock.Now},
		auth:     &AuthService{Store: st, Tokens: codec, Notifier: recorder, Now: clock.Now},
		users:    &UserService{Store: st, Tokens: codec, Notifier: recorder, Now: clock.Now},
	}
}

// loginAs activates the invited user via its setup token and logs in,
// returning the session.
func (e *testEnv) activateAndLogin(t *testing.T, email, password string) Session {
	t.Helper()
	ctx := context.Background()

	inv, ok := e.recorder.LastInvitation()
	require.True(t, ok)
	require.Equal(t, email, inv.Email)

	require.NoError(t, e.auth.SetPassword(ctx, inv.Token, password))

	session, err := e.auth.Login(ctx, email, password)
	require.NoError(t, err)
	return session
}
