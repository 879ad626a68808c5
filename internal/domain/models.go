// Package domain defines the records exchanged with the remote ticketing API:
// tickets, their message threads, and user profiles. These types mirror the
// wire format of the backend verbatim; the console never persists them and
// treats every field except transient UI state as owned by the server.
package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Status enumerates the lifecycle states a ticket can be in. The remote API
// assigns StatusOpen on creation; every later transition happens through the
// status-update endpoint.
type Status string

// Ticket statuses as transmitted on the wire.
const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses lists all valid ticket statuses in display order.
func Statuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusClosed, StatusCancelled}
}

// Valid reports whether s is one of the known ticket statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// Priority enumerates ticket urgency levels. PriorityLow is the default the
// console applies when a creation request omits the field.
type Priority string

// Ticket priorities as transmitted on the wire.
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Priorities lists all valid ticket priorities in ascending urgency.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// Valid reports whether p is one of the known ticket priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Ticket is a support request record. The numeric ID is assigned by the
// backend and immutable; CreatedAt/UpdatedAt are backend-owned timestamps
// (UpdatedAt advances on status changes). Messages is populated only by the
// ticket-detail endpoint and is ordered chronologically.
type Ticket struct {
	ID          int64     `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Messages    []Message `json:"messages,omitempty"`
}

// Closed reports whether the ticket no longer accepts new messages.
func (t Ticket) Closed() bool { return t.Status == StatusClosed }

// Message is a single entry in a ticket's conversation thread. SenderID 0
// denotes the current console user; any other value identifies the authoring
// party on the backend side.
type Message struct {
	ID       int64     `json:"id"`
	Message  string    `json:"message"`
	SenderID int64     `json:"senderId"`
	SentAt   time.Time `json:"sentAt"`
}

// User is a directory profile served by the users API. Read-only from the
// console's perspective.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullname"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxSubjectRunes caps ticket subjects, matching the backend's column width.
const MaxSubjectRunes = 255

// CreateTicketInput carries the fields of a ticket creation request. Validate
// must pass before the request is submitted; no network call is issued for
// invalid input.
type CreateTicketInput struct {
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority,omitempty"`
}

// Normalize trims surrounding whitespace and applies the default priority.
// It returns the normalized copy and leaves the receiver untouched.
func (in CreateTicketInput) Normalize() CreateTicketInput {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = strings.TrimSpace(in.Description)
	if in.Priority == "" {
		in.Priority = PriorityLow
	}
	return in
}

// Validate checks the creation constraints: subject required and at most
// MaxSubjectRunes runes, description required, priority (when set) must be a
// known value. Call Normalize first.
func (in CreateTicketInput) Validate() error {
	if in.Subject == "" {
		return ErrSubjectRequired
	}
	if utf8.RuneCountInString(in.Subject) > MaxSubjectRunes {
		return ErrSubjectTooLong
	}
	if in.Description == "" {
		return ErrDescriptionRequired
	}
	if !in.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}
