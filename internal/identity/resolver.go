// internal/identity/resolver.go
package identity

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Resolver produces the stable session identifier for a shopping cart and
// tracks the authenticated bearer credential. The session id is a
// cart-grouping key, not a security credential.
//
// None of the resolver operations fail: a resolver that cannot persist
// degrades to in-memory identity for the rest of the process lifetime.
type Resolver struct {
	mu      sync.Mutex
	storage Storage
	log     *logrus.Entry
	state   State

	// persist disabled after a storage failure
	persistable bool

	initOnce    sync.Once
	initialized chan struct{}
}

// NewResolver creates a resolver backed by the given storage
func NewResolver(storage Storage, log *logrus.Logger) *Resolver {
	return &Resolver{
		storage:     storage,
		log:         log.WithField("component", "identity"),
		persistable: storage != nil,
		initialized: make(chan struct{}),
	}
}

// Restore reads persisted identity once at startup and marks the resolver
// initialized whether or not a credential was found. Callers that dispatch
// authenticated requests before Restore has run would otherwise race the
// credential read and incorrectly appear logged out.
func (r *Resolver) Restore() {
	r.mu.Lock()
	if r.persistable {
		state, err := r.storage.Load()
		if err != nil {
			r.log.WithError(err).Warn("identity storage unavailable, using in-memory identity")
			r.persistable = false
		} else {
			r.state = state
		}
	}
	r.mu.Unlock()

	r.markInitialized()
}

// SessionID returns the stable session identifier, generating and
// persisting one on first use. Idempotent: the same value is returned for
// the lifetime of the persisted state.
func (r *Resolver) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.SessionID == "" {
		r.state.SessionID = newSessionID()
		r.persistLocked()
		r.log.WithField("session_id", r.state.SessionID).Debug("generated new session id")
	}
	return r.state.SessionID
}

// AuthToken returns the current bearer credential, or "" when logged out
func (r *Resolver) AuthToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.AuthToken
}

// SetAuthToken installs or clears ("" ) the active credential and wakes
// anything blocked on initialization. There is never more than one active
// credential.
func (r *Resolver) SetAuthToken(token string) {
	r.mu.Lock()
	r.state.AuthToken = token
	r.persistLocked()
	r.mu.Unlock()

	r.markInitialized()
}

// ClearAuthToken removes the active credential (logout or server-reported
// invalidity)
func (r *Resolver) ClearAuthToken() {
	r.SetAuthToken("")
}

// IsInitialized reports whether the resolver has made its first
// has-token/no-token determination
func (r *Resolver) IsInitialized() bool {
	select {
	case <-r.initialized:
		return true
	default:
		return false
	}
}

// Initialized returns a channel closed once the resolver has made its
// first credential determination. All waiters observe the same one-shot
// signal.
func (r *Resolver) Initialized() <-chan struct{} {
	return r.initialized
}

func (r *Resolver) markInitialized() {
	r.initOnce.Do(func() {
		close(r.initialized)
	})
}

// persistLocked writes state through to storage; failures demote the
// resolver to in-memory identity, which is acceptable and non-fatal.
func (r *Resolver) persistLocked() {
	if !r.persistable {
		return
	}
	if err := r.storage.Save(r.state); err != nil {
		r.log.WithError(err).Warn("failed to persist identity state, continuing in memory")
		r.persistable = false
	}
}

func newSessionID() string {
	return fmt.Sprintf("sess_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
