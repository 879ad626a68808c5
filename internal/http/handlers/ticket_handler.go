// Ticket list HTTP handlers.
//
// This file exposes the REST surface of the per-session ticket list:
//   - GET    /tickets               (list under the current or given filters)
//   - POST   /tickets               (create)
//   - DELETE /tickets/{id}          (delete, requires ?confirm=true)
//   - PATCH  /tickets/{id}/status   (status change)
//
// Handlers are transport-thin: they validate input, call the session's list
// controller, and translate results into HTTP responses. All list mutation
// rules (confirmed-only updates, stale-list degrade, in-flight guards) live
// in internal/console.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-console/internal/api"
	"github.com/tbourn/go-support-console/internal/auth"
	"github.com/tbourn/go-support-console/internal/domain"
	"github.com/tbourn/go-support-console/internal/http/middleware"
	"github.com/tbourn/go-support-console/internal/search"
)

// Handlers groups the console's HTTP endpoints. The backend client is the
// unauthenticated base client used for login and signup; everything else goes
// through the per-session clients resolved by the session middleware.
type Handlers struct {
	backend  *api.Client
	sessions *auth.Registry
}

// New constructs a Handlers instance bound to the base backend client and the
// session registry.
func New(backend *api.Client, sessions *auth.Registry) *Handlers {
	return &Handlers{backend: backend, sessions: sessions}
}

// session fetches the resolved session, failing the request with 401 when the
// session middleware did not run (misconfigured route).
func (h *Handlers) session(c *gin.Context) (*auth.Session, bool) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "bearer token required")
	}
	return s, ok
}

// pathID parses the :id route parameter. A non-numeric id fails the request
// with 400 and returns ok=false.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// CreateTicketRequest is the JSON payload for creating a ticket.
type CreateTicketRequest struct {
	// Subject is the short summary line (1–255 chars).
	Subject string `json:"subject" example:"Printer on floor 3 is jammed"`
	// Description is the full problem statement.
	Description string `json:"description" example:"Paper jam error persists after clearing tray 2."`
	// Priority defaults to LOW when empty.
	Priority domain.Priority `json:"priority" example:"HIGH"`
}

// ChangeStatusRequest is the JSON payload for a status change.
type ChangeStatusRequest struct {
	Status domain.Status `json:"status" binding:"required" example:"IN_PROGRESS"`
}

// ListTickets godoc
// @ID          listTickets
// @Summary     List tickets
// @Description Returns the session's ticket list. When status/priority query
// @Description parameters are present the filter selection is replaced and the
// @Description list reloaded; otherwise the current selection is refreshed. A
// @Description failed refresh still returns the prior list, marked stale. The
// @Description q parameter applies a keyword quick-filter over the held list
// @Description without touching the backend.
// @Tags        Tickets
// @Produce     json
// @Security    BearerAuth
//
// @Param       status    query  string  false "Status filter"    Enums(OPEN, IN_PROGRESS, CLOSED, CANCELLED)
// @Param       priority  query  string  false "Priority filter"  Enums(LOW, MEDIUM, HIGH, URGENT)
// @Param       q         query  string  false "Keyword quick-filter over subject and description"
//
// @Success     200  {object}  console.ListSnapshot
// @Failure     400  {object}  handlers.ErrorResponse "Unknown filter value"
// @Failure     401  {object}  handlers.ErrorResponse "Missing bearer token"
// @Router      /tickets [get]
func (h *Handlers) ListTickets(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	_, hasStatus := c.GetQuery("status")
	_, hasPriority := c.GetQuery("priority")
	if hasStatus || hasPriority {
		st := domain.Status(c.Query("status"))
		pr := domain.Priority(c.Query("priority"))
		if err := s.List.SetFilters(ctx, st, pr); err != nil {
			switch err {
			case domain.ErrInvalidStatus, domain.ErrInvalidPriority:
				fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
				return
			}
			// Load failures degrade silently: the stale snapshot is still
			// the right answer.
		}
	} else {
		_ = s.List.Load(ctx)
	}

	snap := s.List.Snapshot()
	if q := c.Query("q"); strings.TrimSpace(q) != "" {
		idx := search.NewIndexFromTickets(snap.Tickets)
		matched := idx.TopK(q, len(snap.Tickets))
		tickets := make([]domain.Ticket, len(matched))
		for i, m := range matched {
			tickets[i] = m.Ticket
		}
		snap.Tickets = tickets
	}
	respond(c, http.StatusOK, snap)
}

// CreateTicket godoc
// @ID          createTicket
// @Summary     Create a ticket
// @Description Validates and submits a new ticket. The list gains the ticket
// @Description only after the backend confirms it. Supports Idempotency-Key.
// @Tags        Tickets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Deduplicates retries of the same submission"
// @Param       body             body    handlers.CreateTicketRequest  true  "New ticket payload"
//
// @Success     201  {object}  domain.Ticket
// @Success     200  {object}  console.ListSnapshot "Replayed submission"
// @Failure     400  {object}  handlers.ErrorResponse "Validation failure"
// @Failure     401  {object}  handlers.ErrorResponse "Missing bearer token"
// @Failure     502  {object}  handlers.ErrorResponse "Backend failure"
// @Router      /tickets [post]
func (h *Handlers) CreateTicket(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	// A replayed submission already created its ticket; answer from the held
	// list instead of creating a duplicate.
	if middleware.IsReplay(c) {
		respond(c, http.StatusOK, s.List.Snapshot())
		return
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	t, err := s.List.CreateTicket(c.Request.Context(), domain.CreateTicketInput{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		failDomain(c, err, "Failed to create ticket")
		return
	}
	respond(c, http.StatusCreated, t)
}

// DeleteTicket godoc
// @ID          deleteTicket
// @Summary     Delete a ticket
// @Description Deletes a ticket. The confirm=true query parameter is required;
// @Description without it the request is rejected, mirroring the two-step
// @Description confirmation the console UI enforces.
// @Tags        Tickets
// @Produce     json
// @Security    BearerAuth
//
// @Param       id       path   int     true  "Ticket ID"
// @Param       confirm  query  bool    true  "Must be true"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad id"
// @Failure     409  {object} handlers.ErrorResponse "Confirmation missing or delete in flight"
// @Failure     502  {object} handlers.ErrorResponse "Backend failure"
// @Router      /tickets/{id} [delete]
func (h *Handlers) DeleteTicket(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if c.Query("confirm") != "true" {
		fail(c, http.StatusConflict, ErrCodeConfirmRequired, "deletion must be confirmed with confirm=true")
		return
	}

	if err := s.List.DeleteTicket(c.Request.Context(), id); err != nil {
		failDomain(c, err, "Failed to delete ticket")
		return
	}
	noContent(c)
}

// ChangeStatus godoc
// @ID          changeTicketStatus
// @Summary     Change a ticket's status
// @Description Patches only the status of the ticket. The held list entry is
// @Description updated after backend confirmation; no other field changes.
// @Tags        Tickets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int  true  "Ticket ID"
// @Param       body  body  handlers.ChangeStatusRequest  true  "New status"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad id or unknown status"
// @Failure     502  {object} handlers.ErrorResponse "Backend failure"
// @Router      /tickets/{id}/status [patch]
func (h *Handlers) ChangeStatus(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}

	if err := s.List.ChangeStatus(c.Request.Context(), id, req.Status); err != nil {
		failDomain(c, err, "Failed to update ticket status")
		return
	}
	noContent(c)
}

