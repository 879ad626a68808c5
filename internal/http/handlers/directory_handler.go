// Directory HTTP handlers.
//
// This file exposes read-only passthrough endpoints backing the console's
// directory views:
//   - GET /users        (user directory)
//   - GET /users/{id}   (single profile)
//   - GET /messages     (recent messages across all tickets)
//
// Unlike the ticket list, the console holds no state for these views; each
// request proxies straight to the remote API with the session's credential.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-console/internal/api"
	"github.com/tbourn/go-support-console/internal/utils"
)

// defaultPerPage bounds directory responses when the caller paginates without
// an explicit page size.
const defaultPerPage = 50

// paginated slices items according to the page/per_page query parameters.
// Without a page parameter the full set is returned unchanged.
func paginated[T any](c *gin.Context, items []T) []T {
	pageStr, ok := c.GetQuery("page")
	if !ok {
		return items
	}
	page := utils.AtoiDefault(pageStr, 1)
	perPage := utils.AtoiDefault(c.Query("per_page"), defaultPerPage)
	return utils.Paginate(items, page, perPage)
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users
// @Tags        Directory
// @Produce     json
// @Security    BearerAuth
//
// @Param       page      query  int  false "1-based page (omit for the full set)"
// @Param       per_page  query  int  false "Page size" default(50)
//
// @Success     200  {array}   domain.User
// @Failure     401  {object}  handlers.ErrorResponse "Missing bearer token"
// @Failure     502  {object}  handlers.ErrorResponse "Backend failure"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	users, err := s.Client.ListUsers(c.Request.Context())
	if err != nil {
		failUpstream(c, err, "Failed to load users")
		return
	}
	respond(c, http.StatusOK, paginated(c, users))
}

// GetUser godoc
// @ID          getUser
// @Summary     Fetch one user profile
// @Tags        Directory
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "User ID"
//
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := s.Client.GetUser(c.Request.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
			return
		}
		failUpstream(c, err, "Failed to load user")
		return
	}
	respond(c, http.StatusOK, u)
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List recent messages across all tickets
// @Tags        Directory
// @Produce     json
// @Security    BearerAuth
//
// @Param       page      query  int  false "1-based page (omit for the full set)"
// @Param       per_page  query  int  false "Page size" default(50)
//
// @Success     200  {array}   domain.Message
// @Failure     401  {object}  handlers.ErrorResponse "Missing bearer token"
// @Failure     502  {object}  handlers.ErrorResponse "Backend failure"
// @Router      /messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	msgs, err := s.Client.ListMessages(c.Request.Context())
	if err != nil {
		failUpstream(c, err, "Failed to load messages")
		return
	}
	respond(c, http.StatusOK, paginated(c, msgs))
}
