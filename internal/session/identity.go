// Package session resolves who is signed in. It issues and verifies session
// tokens, authenticates accounts, and notifies listeners when the identity
// changes.
package session

import (
	"context"
	"sync"
)

// Identity is the authenticated user as seen by the rest of the app.
type Identity struct {
	ID           string
	DisplayLabel string
}

// IdentityHandler receives the new identity, or nil after a sign-out.
type IdentityHandler func(ctx context.Context, id *Identity)

// Provider exposes the current identity and its transitions.
type Provider interface {
	Current() (Identity, bool)
	OnIdentityChanged(handler IdentityHandler)
}

// Tracker is an in-process Provider holding a single identity. Handlers run
// synchronously, in registration order, on every transition (login, logout,
// switch of user, and the first resolution).
type Tracker struct {
	mu       sync.Mutex
	current  *Identity
	resolved bool
	handlers []IdentityHandler
}

var _ Provider = (*Tracker)(nil)

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Current() (Identity, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Identity{}, false
	}
	return *t.current, true
}

func (t *Tracker) OnIdentityChanged(handler IdentityHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, handler)
}

// Set records id as the signed-in identity.
func (t *Tracker) Set(ctx context.Context, id Identity) {
	t.transition(ctx, &id)
}

// Clear records a sign-out.
func (t *Tracker) Clear(ctx context.Context) {
	t.transition(ctx, nil)
}

func (t *Tracker) transition(ctx context.Context, next *Identity) {
	t.mu.Lock()
	if t.resolved && sameIdentity(t.current, next) {
		t.mu.Unlock()
		return
	}
	t.current = next
	t.resolved = true
	handlers := append([]IdentityHandler(nil), t.handlers...)
	t.mu.Unlock()

	for _, h := range handlers {
		if next == nil {
			h(ctx, nil)
			continue
		}
		copied := *next
		h(ctx, &copied)
	}
}

func sameIdentity(a, b *Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
