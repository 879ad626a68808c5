// HTTP-layer error codes used across all API endpoints.
//
// The constants give clients a stable, machine-readable taxonomy that
// supplements the human-readable message in every error envelope. Generic
// codes mirror HTTP status semantics; domain-specific codes cover outcomes a
// status alone cannot convey (a delete awaiting confirmation, a send against
// a closed ticket, an operation already in flight).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-console/internal/api"
	"github.com/tbourn/go-support-console/internal/console"
	"github.com/tbourn/go-support-console/internal/domain"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeConfirmRequired  = "confirm_required"
	ErrCodeTicketClosed     = "ticket_closed"
	ErrCodeSendInFlight     = "send_in_flight"
	ErrCodeDeleteInFlight   = "delete_in_flight"
	ErrCodeUpstream         = "upstream_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// failUpstream translates a remote ticketing API failure into a console error
// envelope. Well-known upstream statuses keep their meaning; everything else
// (including transport failures, which carry status 0) becomes a 502 with a
// message safe to show the operator.
func failUpstream(c *gin.Context, err error, fallback string) {
	var ae *api.Error
	if errors.As(err, &ae) {
		switch ae.Status {
		case http.StatusUnauthorized:
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, api.UserMessage(err, "invalid credentials"))
			return
		case http.StatusForbidden:
			fail(c, http.StatusForbidden, ErrCodeForbidden, api.UserMessage(err, fallback))
			return
		case http.StatusNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, api.UserMessage(err, "resource not found"))
			return
		case http.StatusConflict:
			fail(c, http.StatusConflict, ErrCodeConflict, api.UserMessage(err, fallback))
			return
		}
	}
	fail(c, http.StatusBadGateway, ErrCodeUpstream, api.UserMessage(err, fallback))
}

// failDomain maps controller and validation sentinels onto HTTP responses,
// falling back to failUpstream for remote failures.
func failDomain(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrSubjectRequired),
		errors.Is(err, domain.ErrSubjectTooLong),
		errors.Is(err, domain.ErrDescriptionRequired),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, console.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, console.ErrTicketClosed):
		fail(c, http.StatusConflict, ErrCodeTicketClosed, "ticket is closed")
	case errors.Is(err, console.ErrSendInFlight):
		fail(c, http.StatusConflict, ErrCodeSendInFlight, "a message send is already in flight")
	case errors.Is(err, console.ErrDeleteInFlight):
		fail(c, http.StatusConflict, ErrCodeDeleteInFlight, "a delete for this ticket is already in flight")
	case errors.Is(err, console.ErrNoTicket):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no ticket loaded")
	default:
		failUpstream(c, err, fallback)
	}
}
