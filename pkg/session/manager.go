package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrphanPolicy decides what happens when profile provisioning fails after the
// provider has already created the identity.
type OrphanPolicy int

const (
	// OrphanKeep leaves the provider-side identity in place. The identity
	// exists without a profile record until reconciled out of band.
	OrphanKeep OrphanPolicy = iota
	// OrphanSignOut additionally signs the fresh identity back out so no
	// half-provisioned session survives the failure.
	OrphanSignOut
)

// Manager is the process-wide authority on "who is logged in". It is created
// once at startup and lives for the process lifetime.
//
// Session state has a single writer: every change flows through publish,
// whether it originates from a provider notification, session restoration or
// a local logout. Reads are non-blocking snapshots of the last published
// value.
//
// Login, Register and Logout are not reentrant-safe against each other;
// callers are expected to serialize them (typically by disabling the UI while
// one is in flight). The Manager performs no operation-level queuing.
type Manager struct {
	provider Provider
	profiles ProfileStore
	orphan   OrphanPolicy
	logger   zerolog.Logger

	mu      sync.RWMutex
	current *Session
	loading bool
	subs    map[uuid.UUID]func(*Session)

	startOnce   sync.Once
	unsubscribe func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithOrphanPolicy selects the failure behavior of Register's provisioning
// step. Default is OrphanKeep.
func WithOrphanPolicy(p OrphanPolicy) Option {
	return func(m *Manager) { m.orphan = p }
}

// WithLogger sets the manager's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager builds a Manager. The zero state is loading=true: until Start's
// restoration completes, consumers must treat authentication state as unknown
// rather than unauthenticated.
func NewManager(provider Provider, profiles ProfileStore, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		profiles: profiles,
		loading:  true,
		subs:     make(map[uuid.UUID]func(*Session)),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to the provider's session-change notifications for the
// process lifetime and kicks off asynchronous session restoration. Safe to
// call more than once; only the first call has any effect.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		m.unsubscribe = m.provider.OnSessionChange(m.publish)

		go func() {
			sess, err := m.provider.CurrentSession(ctx)
			if err != nil {
				if err != ErrNoSession {
					m.logger.Warn().Err(err).Msg("session restoration failed")
				}
				m.publish(nil)
				return
			}
			m.publish(sess)
		}()
	})
}

// Snapshot returns the last published session (nil when unauthenticated) and
// whether the initial restoration is still pending.
func (m *Manager) Snapshot() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.loading
}

// Authenticated reports whether a session is currently held. It returns false
// while loading; check Snapshot when the distinction matters.
func (m *Manager) Authenticated() bool {
	sess, _ := m.Snapshot()
	return sess != nil
}

// Subscribe registers fn for future session changes and returns an
// unsubscribe func. fn is called with nil on sign-out.
func (m *Manager) Subscribe(fn func(*Session)) func() {
	id := uuid.New()

	m.mu.Lock()
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Login delegates to the provider. On a nil return the credentials were
// accepted, but the session is set only when the provider's change
// notification arrives; callers must not read Snapshot expecting it
// synchronously.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := m.provider.SignIn(ctx, email, password); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	return nil
}

// Register creates the identity at the provider, then provisions the matching
// application profile under the provider-assigned id.
//
// When provisioning fails the identity already exists without a profile. The
// configured OrphanPolicy decides whether the fresh session is signed out
// again; either way the error propagates and no rollback of the identity
// itself is attempted.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	identity, err := m.provider.SignUp(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign up: %w", err)
	}

	err = m.profiles.CreateProfile(ctx, Profile{
		ID:    identity.ID,
		Name:  name,
		Email: email,
	})
	if err == nil {
		return nil
	}

	m.logger.Error().Err(err).Str("identity_id", identity.ID).Msg("profile provisioning failed after signup")

	if m.orphan == OrphanSignOut {
		if soErr := m.provider.SignOut(ctx); soErr != nil {
			m.logger.Warn().Err(soErr).Msg("sign-out after failed provisioning also failed")
		}
		m.publish(nil)
	}

	return fmt.Errorf("provision profile: %w", err)
}

// Logout delegates to the provider and, on success, clears the local session
// immediately rather than waiting for the change notification, so consumers
// never observe a stale "still logged in" state.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	m.publish(nil)
	return nil
}

// Close unregisters the provider subscription. Intended for tests; in normal
// operation the Manager lives as long as the process.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// publish atomically replaces the current session and fans the change out to
// subscribers. It is the only writer of Manager state. Callbacks run outside
// the lock; a late notification from a superseded operation still wins
// (last-write-wins, no request fencing).
func (m *Manager) publish(sess *Session) {
	m.mu.Lock()
	m.current = sess
	m.loading = false
	fns := make([]func(*Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}
