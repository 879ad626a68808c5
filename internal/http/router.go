// Package httpapi wires the HTTP transport (Gin) to the console's session
// registry, controllers, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging, panic recovery,
// metrics, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-support-console/internal/api"
	"github.com/tbourn/go-support-console/internal/auth"
	"github.com/tbourn/go-support-console/internal/config"
	"github.com/tbourn/go-support-console/internal/console"
	"github.com/tbourn/go-support-console/internal/http/handlers"
	"github.com/tbourn/go-support-console/internal/http/middleware"
	"github.com/tbourn/go-support-console/internal/notify"
)

// sessionFactory builds the per-operator console state for a new bearer
// credential: a client bound to the token, a notice buffer mirrored into the
// structured log, and the two controllers sharing both.
func sessionFactory(backend *api.Client) auth.Factory {
	return func(token string) *auth.Session {
		client := backend.WithToken(token)
		buf := notify.NewBuffer(notify.DefaultBufferSize)
		sink := notify.Multi{buf, notify.NewLog(log.Logger)}
		return &auth.Session{
			Token:        token,
			Client:       client,
			List:         console.NewListController(client, sink, log.Logger),
			Conversation: console.NewConversationController(client, sink, log.Logger),
			Notices:      buf,
		}
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and
// rate limiting, CORS and security headers, health and metrics endpoints, and
// then mounts the versioned console API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency (before rate limiter so replays bypass it)
//  8. Rate limiter (per token/IP)
//  9. CORS, gzip, and security headers
func RegisterRoutes(r *gin.Engine, backend *api.Client, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency replay detection (before rate limiting)
	replays := middleware.NewReplayStore(cfg.IdempotencyTTL)
	r.Use(middleware.Idempotency(middleware.IdempotencyOptions{MaxLen: 200}, replays))

	// 8) Token-bucket rate limiter per bearer token/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByTokenOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Compress list/thread payloads; the snapshots can get large.
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (dev/staging only)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: handlers ← session registry ← backend client
	sessions := auth.NewRegistry(cfg.SessionTTL, sessionFactory(backend))
	h := handlers.New(backend, sessions)

	apiGroup := groupWithPrefix(r, cfg.APIBasePath)

	// Credential exchange happens before a session exists.
	apiGroup.POST("/session/login", h.LogIn)
	apiGroup.POST("/session/signup", h.SignUp)

	// Everything else is per-session.
	authed := apiGroup.Group("", middleware.Sessions(sessions))
	{
		authed.POST("/session/logout", h.LogOut)
		authed.GET("/notices", h.Notices)

		// Ticket list
		authed.GET("/tickets", h.ListTickets)
		authed.POST("/tickets", h.CreateTicket)
		authed.DELETE("/tickets/:id", h.DeleteTicket)
		authed.PATCH("/tickets/:id/status", h.ChangeStatus)

		// Conversation
		authed.GET("/tickets/:id", h.GetTicket)
		authed.POST("/tickets/:id/messages", h.SendMessage)

		// Directory
		authed.GET("/users", h.ListUsers)
		authed.GET("/users/:id", h.GetUser)
		authed.GET("/messages", h.ListMessages)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints using http.MaxBytesReader. Requests exceeding the cap cause
// downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
