// Package notify delivers invitation and password reset emails. Services
// depend on the Sink interface, so transports can be swapped and tests can
// record deliveries instead of sending them.
package notify

import "context"

// Sink receives outbound notifications. Implementations must be safe for
// concurrent use.
type Sink interface {
	// SendInvitation delivers an account setup email carrying the action
	// token the recipient uses to choose a password.
	SendInvitation(ctx context.Context, email, token, firstName string) error

	// SendReset delivers a password reset email carrying the action token.
	SendReset(ctx context.Context, email, token, firstName string) error
}
