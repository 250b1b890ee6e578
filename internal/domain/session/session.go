// internal/domain/session/session.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/mercado-ia/storefront/internal/domain/cart"
	"github.com/mercado-ia/storefront/internal/domain/checkout"
	"github.com/sirupsen/logrus"
)

const defaultIdleTTL = 30 * time.Minute

// Identity is the authenticated buyer resolved from the bearer token
type Identity struct {
	UserID string
	Email  string
}

// Session is the explicit per-identity context: the buyer's cart and its
// checkout flow. It is never shared across identities.
type Session struct {
	Identity Identity
	Cart     *cart.Manager
	Checkout *checkout.Orchestrator

	busy     checkout.BusyFlag
	lastSeen time.Time // guarded by Registry.mu
}

// FlagFactory builds the checkout busy flag for a user
type FlagFactory func(userID string) checkout.BusyFlag

// Registry owns the live sessions of an API instance
type Registry struct {
	store   cart.Store
	gateway checkout.Gateway
	flags   FlagFactory
	idleTTL time.Duration
	logger  *logrus.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	// detached keeps sessions dropped by Teardown or eviction until the next
	// sweep finds them idle. A new session for the same user inherits their
	// busy flag, so a payment still in flight keeps blocking resubmission.
	detached map[string]*Session
}

// NewRegistry creates an empty registry. A nil flags factory gives every
// user an in-process busy flag; a non-positive idleTTL defaults to 30m.
func NewRegistry(store cart.Store, gateway checkout.Gateway, flags FlagFactory, idleTTL time.Duration, logger *logrus.Logger) *Registry {
	if flags == nil {
		flags = func(string) checkout.BusyFlag { return checkout.NewLocalFlag() }
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Registry{
		store:    store,
		gateway:  gateway,
		flags:    flags,
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
		detached: make(map[string]*Session),
	}
}

// Init resolves the session of identity, creating it on first sight, and
// reloads its cart from the store.
func (r *Registry) Init(ctx context.Context, identity Identity) (*Session, error) {
	r.mu.Lock()
	sess, ok := r.sessions[identity.UserID]
	if !ok {
		sess = r.newSessionLocked(identity)
		r.sessions[identity.UserID] = sess
	}
	sess.lastSeen = r.now()
	r.mu.Unlock()

	if _, err := sess.Cart.Init(ctx, identity.UserID); err != nil {
		return nil, err
	}
	return sess, nil
}

// newSessionLocked must be called with r.mu held
func (r *Registry) newSessionLocked(identity Identity) *Session {
	busy := r.flags(identity.UserID)
	if previous, ok := r.detached[identity.UserID]; ok {
		busy = previous.busy
		delete(r.detached, identity.UserID)
	}

	manager := cart.NewManager(r.store, r.logger)
	r.logger.WithField("user_id", identity.UserID).Debug("Session created")
	return &Session{
		Identity: identity,
		Cart:     manager,
		Checkout: checkout.NewOrchestrator(manager, r.gateway, busy, r.logger),
		busy:     busy,
	}
}

// Get returns the live session of userID
func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[userID]
	return sess, ok
}

// Teardown drops the session of userID on sign-out
func (r *Registry) Teardown(userID string) bool {
	r.mu.Lock()
	sess, ok := r.sessions[userID]
	if ok {
		r.detachLocked(userID, sess)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	sess.Cart.Teardown()
	r.logger.WithField("user_id", userID).Debug("Session torn down")
	return true
}

// detachLocked must be called with r.mu held
func (r *Registry) detachLocked(userID string, sess *Session) {
	delete(r.sessions, userID)
	r.detached[userID] = sess
}

// EvictIdle tears down sessions not seen within the idle TTL and forgets
// detached sessions that are no longer paying. Sessions with a payment
// request in flight are kept. It returns the number of evicted sessions.
func (r *Registry) EvictIdle() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	for userID, sess := range r.detached {
		if sess.Checkout.State() != checkout.StateRequestingPayment {
			delete(r.detached, userID)
		}
	}

	var evicted []*Session
	for userID, sess := range r.sessions {
		if sess.lastSeen.After(cutoff) || sess.Checkout.State() == checkout.StateRequestingPayment {
			continue
		}
		r.detachLocked(userID, sess)
		evicted = append(evicted, sess)
	}
	r.mu.Unlock()

	for _, sess := range evicted {
		sess.Cart.Teardown()
	}
	if len(evicted) > 0 {
		r.logger.WithField("evicted", len(evicted)).Debug("Idle sessions evicted")
	}
	return len(evicted)
}

// Run calls EvictIdle every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictIdle()
		}
	}
}

// Len is the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
