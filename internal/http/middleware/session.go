// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the per-operator console session from the bearer
// credential. The console never validates tokens itself; the remote ticketing
// API rejects bad credentials on the first proxied call. What the middleware
// guarantees is that every authenticated route sees exactly one session per
// token, with controllers and notice buffer attached.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-console/internal/auth"
)

// ctxKeySession is the Gin context key holding the resolved *auth.Session.
const ctxKeySession = "session"

// Sessions returns a Gin middleware that requires an "Authorization: Bearer"
// header, resolves (or lazily creates) the session for the credential, and
// stores it in the request context. Requests without a bearer token are
// rejected with 401.
func Sessions(reg *auth.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := BearerToken(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "unauthorized",
				"message":    "bearer token required",
			})
			return
		}
		c.Set(ctxKeySession, reg.Get(tok))
		c.Next()
	}
}

// SessionFrom returns the session resolved by Sessions. The second return
// value is false on routes where the middleware did not run.
func SessionFrom(c *gin.Context) (*auth.Session, bool) {
	v, ok := c.Get(ctxKeySession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*auth.Session)
	return s, ok && s != nil
}
