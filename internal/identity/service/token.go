package service

import (
	"context"
	"time"

	"github.com/atticlabs/attic-auth/internal/identity/store"
	"github.com/atticlabs/attic-auth/pkg/jwtx"
)

// issueSetupToken mints a one-hour action token for the user and persists it
// with its store-side expiry, replacing any outstanding token. The persisted
// copy is what makes the token single-use: consuming it clears the row, and
// a replaced token stops matching.
func issueSetupToken(ctx context.Context, st store.Store, codec *jwtx.Codec, userID string, now time.Time) (string, error) {
	token, err := codec.Issue(userID, jwtx.ActionTokenTTL)
	if err != nil {
		return "", err
	}
	if err := st.Users().SetResetToken(ctx, userID, token, now.Add(jwtx.ActionTokenTTL)); err != nil {
		return "", err
	}
	return token, nil
}
