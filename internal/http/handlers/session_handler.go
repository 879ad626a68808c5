// Session and notification HTTP handlers.
//
// This file exposes the credential exchange and the notice rail:
//   - POST /session/login   (exchange email/password for a bearer token)
//   - POST /session/signup  (register an account)
//   - POST /session/logout  (drop the cached console session)
//   - GET  /notices         (drain the session's pending notifications)
//
// Login and signup proxy straight to the remote auth API; the console stores
// no credentials and mints no tokens of its own.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-console/internal/notify"
)

// LogInRequest is the JSON payload for a login.
type LogInRequest struct {
	Email    string `json:"email" binding:"required" example:"agent@example.com"`
	Password string `json:"password" binding:"required"`
}

// LogInResponse carries the bearer token issued by the auth API.
type LogInResponse struct {
	AccessToken string `json:"access_token"`
}

// SignUpRequest is the JSON payload for account registration.
type SignUpRequest struct {
	Name     string `json:"name" binding:"required" example:"Alex Agent"`
	Email    string `json:"email" binding:"required" example:"agent@example.com"`
	Password string `json:"password" binding:"required"`
}

// NoticesResponse wraps the drained notifications in emission order.
type NoticesResponse struct {
	Notices []notify.Notice `json:"notices"`
}

// LogIn godoc
// @ID          logIn
// @Summary     Log in
// @Description Exchanges credentials for a bearer token via the remote auth
// @Description API. The token authenticates all other console endpoints.
// @Tags        Session
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LogInRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.LogInResponse
// @Failure     400  {object}  handlers.ErrorResponse "Missing fields"
// @Failure     401  {object}  handlers.ErrorResponse "Invalid credentials"
// @Failure     502  {object}  handlers.ErrorResponse "Auth API failure"
// @Router      /session/login [post]
func (h *Handlers) LogIn(c *gin.Context) {
	var req LogInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	tok, err := h.backend.LogIn(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		failUpstream(c, err, "Login failed")
		return
	}
	respond(c, http.StatusOK, LogInResponse{AccessToken: tok})
}

// SignUp godoc
// @ID          signUp
// @Summary     Register an account
// @Description Registers a new account with the remote auth API. The caller
// @Description logs in afterwards to obtain a token.
// @Tags        Session
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SignUpRequest  true  "Registration payload"
//
// @Success     201  {object}  map[string]string
// @Failure     400  {object}  handlers.ErrorResponse "Missing fields"
// @Failure     409  {object}  handlers.ErrorResponse "Account already exists"
// @Failure     502  {object}  handlers.ErrorResponse "Auth API failure"
// @Router      /session/signup [post]
func (h *Handlers) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, email and password required")
		return
	}

	if err := h.backend.SignUp(c.Request.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), req.Password); err != nil {
		failUpstream(c, err, "Registration failed")
		return
	}
	respond(c, http.StatusCreated, gin.H{"status": "registered"})
}

// LogOut godoc
// @ID          logOut
// @Summary     Log out
// @Description Drops the cached console session for the presented token. The
// @Description token itself stays valid until the auth API expires it.
// @Tags        Session
// @Security    BearerAuth
//
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Missing bearer token"
// @Router      /session/logout [post]
func (h *Handlers) LogOut(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.sessions.Drop(s.Token)
	noContent(c)
}

// Notices godoc
// @ID          drainNotices
// @Summary     Drain pending notifications
// @Description Returns and clears the session's queued success/error notices
// @Description in emission order. Notices are fire-and-forget: a second drain
// @Description returns an empty list until new operations queue more.
// @Tags        Session
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.NoticesResponse
// @Failure     401  {object}  handlers.ErrorResponse "Missing bearer token"
// @Router      /notices [get]
func (h *Handlers) Notices(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	notices := s.Notices.Drain()
	if notices == nil {
		notices = []notify.Notice{}
	}
	respond(c, http.StatusOK, NoticesResponse{Notices: notices})
}
