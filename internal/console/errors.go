// Package console implements the client-side state of the support dashboard:
// the ticket list and the per-ticket conversation. This file centralizes the
// controller-level error values so callers can branch on them with errors.Is;
// mapping to HTTP statuses happens in the transport layer.
package console

import "errors"

var (
	// ErrEmptyMessage is returned when a send is attempted with blank or
	// whitespace-only text. No request is issued.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTicketClosed is returned when a send is attempted on a CLOSED
	// ticket. No request is issued.
	ErrTicketClosed = errors.New("ticket is closed")

	// ErrSendInFlight is returned when a send is attempted while a previous
	// one has not resolved. Only one send may be in flight per conversation.
	ErrSendInFlight = errors.New("a send is already in progress")

	// ErrDeleteInFlight is returned when a delete is attempted for a ticket
	// whose previous delete request has not resolved.
	ErrDeleteInFlight = errors.New("a delete is already in progress")

	// ErrNoTicket is returned when a conversation operation requires a loaded
	// ticket and none is.
	ErrNoTicket = errors.New("no ticket loaded")
)
