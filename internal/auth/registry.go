// Package auth holds the console-side session registry. The bearer credential
// itself is issued by the external auth API (the console never mints or
// inspects tokens); this package only associates each credential with the
// per-operator console state: a ticket list controller, a conversation
// controller, and a notice buffer.
//
// Sessions are created lazily on first use and evicted after a TTL of
// inactivity via opportunistic cleanup during lookups, bounding memory in a
// single-process deployment.
package auth

import (
	"sync"
	"time"

	"github.com/tbourn/go-support-console/internal/api"
	"github.com/tbourn/go-support-console/internal/console"
	"github.com/tbourn/go-support-console/internal/notify"
)

// Session is the console state owned by one authenticated operator.
type Session struct {
	// Token is the bearer credential identifying the session.
	Token string
	// Client calls the remote ticketing API with the session's credential.
	Client *api.Client
	// List owns the ticket list state.
	List *console.ListController
	// Conversation owns the ticket detail / thread state.
	Conversation *console.ConversationController
	// Notices buffers the operator's undelivered transient notifications.
	Notices *notify.Buffer

	lastSeen time.Time
}

// Factory builds the controllers and notice buffer for a new session, bound
// to an API client carrying the session's token.
type Factory func(token string) *Session

// Registry maps bearer credentials to live sessions. Safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  Factory
	ttl      time.Duration
	lookups  uint64

	// now is a test seam.
	now func() time.Time
}

// sweepEvery bounds how often idle-session cleanup runs (in lookups).
const sweepEvery = 1000

// NewRegistry constructs a Registry. Sessions idle for longer than ttl are
// dropped; ttl <= 0 disables eviction.
func NewRegistry(ttl time.Duration, factory Factory) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session for token, creating it on first use. Cleanup of
// idle sessions runs before the lookup so an expired session is rebuilt
// fresh rather than refreshed.
func (r *Registry) Get(token string) *Session {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lookups++
	if r.ttl > 0 && r.lookups >= sweepEvery {
		for k, s := range r.sessions {
			if now.Sub(s.lastSeen) >= r.ttl {
				delete(r.sessions, k)
			}
		}
		r.lookups = 0
	}

	if s, ok := r.sessions[token]; ok {
		if r.ttl <= 0 || now.Sub(s.lastSeen) < r.ttl {
			s.lastSeen = now
			return s
		}
		delete(r.sessions, token)
	}

	s := r.factory(token)
	s.lastSeen = now
	r.sessions[token] = s
	return s
}

// Drop removes the session for token, if any (logout).
func (r *Registry) Drop(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
