// Package session owns client-side authentication state. A single Manager per
// process bridges an external identity provider's asynchronous session-change
// notifications into application state and exposes login, register and logout
// as awaitable operations.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("no active session")

// Identity is the provider's view of a registered account. Name and IsSeller
// come from provider metadata and may be zero when the provider does not
// carry them.
type Identity struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	IsSeller bool   `json:"isSeller,omitempty"`
}

// Session is ephemeral proof that an identity is currently authenticated.
// It lives only in process memory; a Manager holds at most one at a time.
type Session struct {
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session's horizon has passed.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Provider is the external identity provider the Manager delegates to.
//
// SignIn deliberately returns no session: the authoritative signal that state
// changed is the OnSessionChange notification, mirroring how session-based
// providers deliver state. A nil error only means the credentials were
// accepted.
type Provider interface {
	SignIn(ctx context.Context, email, password string) error
	// SignUp creates an identity and returns it with the provider-assigned id.
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context) error
	// CurrentSession restores a previously established session, or returns
	// ErrNoSession when none is persisted.
	CurrentSession(ctx context.Context) (*Session, error)
	// OnSessionChange registers a callback invoked with every session change
	// (nil on sign-out). The returned func unregisters it.
	OnSessionChange(fn func(*Session)) (unsubscribe func())
}

// Profile is the application-side account record provisioned alongside the
// provider's identity.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProfileStore persists application profiles. CreateProfile is not
// idempotent: provisioning the same id twice fails with the store's
// duplicate-key error, so register must not be retried blindly.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p Profile) error
}
