package notify

import (
	"context"
	"sync"
)

// Delivery captures one recorded notification.
type Delivery struct {
	Email     string
	Token     string
	FirstName string
}

// Recorder is a Sink for tests. It stores deliveries in memory and can be
// told to fail.
type Recorder struct {
	mu          sync.Mutex
	Invitations []Delivery
	Resets      []Delivery

	// Err, when set, is returned from every send.
	Err error
}

func (r *Recorder) SendInvitation(_ context.Context, email, token, firstName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Invitations = append(r.Invitations, Delivery{Email: email, Token: token, FirstName: firstName})
	return nil
}

func (r *Recorder) SendReset(_ context.Context, email, token, firstName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Resets = append(r.Resets, Delivery{Email: email, Token: token, FirstName: firstName})
	return nil
}

// LastInvitation returns the most recent invitation, if any.
func (r *Recorder) LastInvitation() (Delivery, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Invitations) == 0 {
		return Delivery{}, false
	}
	return r.Invitations[len(r.Invitations)-1], true
}

// LastReset returns the most recent reset delivery, if any.
func (r *Recorder) LastReset() (Delivery, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Resets) == 0 {
		return Delivery{}, false
	}
	return r.Resets[len(r.Resets)-1], true
}
