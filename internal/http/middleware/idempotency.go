// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for unsafe HTTP methods. Clients
// may send an Idempotency-Key header on POST requests; the middleware
// validates it, records keys of successfully completed requests in an
// in-memory TTL store, and flags replays in the request context so that:
//   - handlers can short-circuit via IsReplay instead of re-submitting the
//     operation to the remote backend
//   - the rate limiter serves the replay without consuming tokens
//
// The store is process-local; the console runs as a single instance in front
// of the ticketing API, so no shared persistence is needed.
package middleware

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to convey an
// idempotency key for unsafe operations. The value is expected to be stable
// for a given semantic operation so retries can be deduplicated.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys used internally to stash idempotency state.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when the key was already completed
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by Idempotency. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request repeats a previously completed
// operation. Handlers should then answer from held state rather than
// re-submit to the backend.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ReplayStore remembers completed idempotency keys for a TTL. Entries are
// evicted opportunistically during writes. Safe for concurrent use.
type ReplayStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]time.Time
	writes  uint64
}

// NewReplayStore constructs a ReplayStore. ttl values <= 0 default to 24h.
func NewReplayStore(ttl time.Duration) *ReplayStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReplayStore{ttl: ttl, entries: make(map[string]time.Time)}
}

// Seen reports whether key was completed within the TTL window.
func (s *ReplayStore) Seen(key string) bool {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.entries[key]
	if !ok {
		return false
	}
	if now.Sub(at) >= s.ttl {
		delete(s.entries, key)
		return false
	}
	return true
}

// Remember records key as completed. Every ~1000 writes, expired entries are
// swept so the map stays bounded.
func (s *ReplayStore) Remember(key string) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if s.writes >= 1000 {
		for k, at := range s.entries {
			if now.Sub(at) >= s.ttl {
				delete(s.entries, k)
			}
		}
		s.writes = 0
	}
	s.entries[key] = now
}

// IdempotencyOptions configures header validation for Idempotency.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative
	// RFC7230-like token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// Idempotency validates the Idempotency-Key header (when present), stashes
// it in the request context, and consults store for a prior completion.
//
// Behavior:
//   - Safe methods and requests without the header pass through untouched.
//   - A malformed key is rejected with 400 before any handler runs.
//   - A known key marks the request as a replay and bypasses rate limiting;
//     the handler decides how to serve it.
//   - A new key is remembered after the handler completes with a 2xx status,
//     so failed attempts stay retryable under the same key.
//
// Keys are scoped by bearer credential, method, and path, so the same client
// key on different operations never collides across sessions.
func Idempotency(opts IdempotencyOptions, store *ReplayStore) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		scoped := BearerToken(c) + "|" + c.Request.Method + "|" + c.Request.URL.Path + "|" + key
		if store != nil && store.Seen(scoped) {
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
		}

		c.Next()

		if store != nil && !IsReplay(c) {
			if st := c.Writer.Status(); st >= 200 && st < 300 {
				store.Remember(scoped)
			}
		}
	}
}

// isSafeMethod reports whether the method has no side effects to deduplicate.
func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
