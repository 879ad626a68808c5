// Package console – ticket list controller.
//
// ListController owns the in-memory ticket list for the current filter
// selection and mediates create, delete, and status-change operations against
// the remote backend. Mutation rules:
//
//   - Load replaces the whole list; a failed load keeps the prior list and is
//     logged only (silent degrade), never surfaced as an empty list.
//   - CreateTicket appends the server-confirmed record; nothing is inserted
//     before confirmation.
//   - ChangeStatus patches only the status field of the matching ticket, and
//     only after the backend confirms.
//   - Every load carries a generation tag; a result whose generation no longer
//     matches is discarded so a superseded filter selection can never
//     overwrite a newer one.
package console

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-support-console/internal/api"
	"github.com/tbourn/go-support-console/internal/domain"
	"github.com/tbourn/go-support-console/internal/notify"
)

// ListAPI is the backend surface the list controller depends on.
// Implementations must be safe for concurrent use and honor the context.
type ListAPI interface {
	// ListTickets returns the tickets matching the filter.
	ListTickets(ctx context.Context, f api.Filter) ([]domain.Ticket, error)
	// CreateTicket submits a new ticket and returns the confirmed record.
	CreateTicket(ctx context.Context, in domain.CreateTicketInput) (*domain.Ticket, error)
	// DeleteTicket removes a ticket by id.
	DeleteTicket(ctx context.Context, id int64) error
	// UpdateTicketStatus patches a ticket's status.
	UpdateTicketStatus(ctx context.Context, id int64, status domain.Status) (*domain.Ticket, error)
}

// ListSnapshot is a point-in-time copy of the list state for rendering.
type ListSnapshot struct {
	// Tickets is the held list under the current filter selection.
	Tickets []domain.Ticket `json:"tickets"`
	// Loaded is true once at least one load has succeeded; it distinguishes
	// the initial loading state from a genuinely empty result.
	Loaded bool `json:"loaded"`
	// Empty is true when a successful load returned no tickets ("no tickets
	// found"), never merely because nothing has loaded yet.
	Empty bool `json:"empty"`
	// Stale is true when the most recent load failed and Tickets still shows
	// the prior result.
	Stale bool `json:"stale"`
	// StatusFilter and PriorityFilter echo the active selection ("" = all).
	StatusFilter   domain.Status   `json:"statusFilter,omitempty"`
	PriorityFilter domain.Priority `json:"priorityFilter,omitempty"`
}

// ListController maintains the authoritative ticket list for one session.
// All methods are safe for concurrent use; the held state is mutated only
// under the controller lock and only with server-confirmed data.
type ListController struct {
	api     ListAPI
	notices notify.Notifier
	log     zerolog.Logger

	mu       sync.Mutex
	tickets  []domain.Ticket
	loaded   bool
	stale    bool
	filter   api.Filter
	gen      uint64
	deleting map[int64]bool
}

// NewListController constructs a ListController. The notifier receives the
// operator-facing outcome of every mutating operation.
func NewListController(a ListAPI, n notify.Notifier, log zerolog.Logger) *ListController {
	return &ListController{
		api:      a,
		notices:  n,
		log:      log,
		deleting: make(map[int64]bool),
	}
}

// Load fetches the ticket list for the current filter selection and replaces
// the held list on success. On failure the prior list is kept and the error
// is logged only; callers should keep rendering the stale snapshot. A result
// that arrives after a newer load started is discarded.
func (c *ListController) Load(ctx context.Context) error {
	tr := otel.Tracer("console/ListController")
	ctx, span := tr.Start(ctx, "Load")
	defer span.End()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	f := c.filter
	c.mu.Unlock()

	items, err := c.api.ListTickets(ctx, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// A newer load (or filter change) superseded this one.
		c.log.Debug().Uint64("gen", gen).Uint64("current", c.gen).Msg("discarding stale ticket list")
		return nil
	}
	if err != nil {
		c.stale = c.loaded
		c.log.Warn().Err(err).Msg("ticket list load failed; keeping prior list")
		return err
	}
	c.tickets = items
	c.loaded = true
	c.stale = false
	span.SetAttributes(attribute.Int("tickets.count", len(items)))
	return nil
}

// SetStatusFilter updates the status axis ("" clears it) and reloads the
// list. Unknown values are rejected before any request is issued.
func (c *ListController) SetStatusFilter(ctx context.Context, s domain.Status) error {
	if s != "" && !s.Valid() {
		return domain.ErrInvalidStatus
	}
	c.mu.Lock()
	c.filter.Status = s
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetPriorityFilter updates the priority axis ("" clears it) and reloads the
// list. Unknown values are rejected before any request is issued.
func (c *ListController) SetPriorityFilter(ctx context.Context, p domain.Priority) error {
	if p != "" && !p.Valid() {
		return domain.ErrInvalidPriority
	}
	c.mu.Lock()
	c.filter.Priority = p
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetFilters updates both axes at once and reloads. Used by the transport
// layer, which receives the full selection per request.
func (c *ListController) SetFilters(ctx context.Context, s domain.Status, p domain.Priority) error {
	if s != "" && !s.Valid() {
		return domain.ErrInvalidStatus
	}
	if p != "" && !p.Valid() {
		return domain.ErrInvalidPriority
	}
	c.mu.Lock()
	c.filter = api.Filter{Status: s, Priority: p}
	c.mu.Unlock()
	return c.Load(ctx)
}

// Filter returns the active filter selection.
func (c *ListController) Filter() api.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// CreateTicket validates, submits, and on success appends the
// server-confirmed ticket to the held list. Validation failures issue no
// request; transport failures leave the list unchanged and surface the
// server-provided message when one exists.
func (c *ListController) CreateTicket(ctx context.Context, in domain.CreateTicketInput) (*domain.Ticket, error) {
	tr := otel.Tracer("console/ListController")
	ctx, span := tr.Start(ctx, "CreateTicket")
	defer span.End()

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t, err := c.api.CreateTicket(ctx, in)
	if err != nil {
		c.notices.Error(api.UserMessage(err, "Failed to create ticket"))
		return nil, err
	}

	c.mu.Lock()
	c.tickets = append(c.tickets, *t)
	c.mu.Unlock()

	span.SetAttributes(attribute.Int64("ticket.id", t.ID))
	c.notices.Success("Ticket created successfully!")
	return t, nil
}

// DeleteTicket removes the ticket on the backend and, once confirmed, from
// the held list. While a delete for an id is in flight, further deletes for
// the same id are rejected so the confirm action cannot double-submit. On
// failure the list is unchanged and the caller may retry.
func (c *ListController) DeleteTicket(ctx context.Context, id int64) error {
	tr := otel.Tracer("console/ListController")
	ctx, span := tr.Start(ctx, "DeleteTicket", trace.WithAttributes(attribute.Int64("ticket.id", id)))
	defer span.End()

	c.mu.Lock()
	if c.deleting[id] {
		c.mu.Unlock()
		return ErrDeleteInFlight
	}
	c.deleting[id] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.deleting, id)
		c.mu.Unlock()
	}()

	if err := c.api.DeleteTicket(ctx, id); err != nil {
		c.notices.Error("Failed to delete ticket. Please try again.")
		return err
	}

	c.mu.Lock()
	kept := c.tickets[:0]
	for _, t := range c.tickets {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tickets = kept
	c.mu.Unlock()

	c.notices.Success("Ticket deleted successfully")
	return nil
}

// ChangeStatus patches a ticket's status on the backend. Only after
// confirmation is the status field (and nothing else) of the matching held
// ticket replaced; on failure the list is exactly as before. There is
// deliberately no optimistic update here.
func (c *ListController) ChangeStatus(ctx context.Context, id int64, status domain.Status) error {
	tr := otel.Tracer("console/ListController")
	ctx, span := tr.Start(ctx, "ChangeStatus",
		trace.WithAttributes(
			attribute.Int64("ticket.id", id),
			attribute.String("ticket.status", string(status)),
		),
	)
	defer span.End()

	if !status.Valid() {
		return domain.ErrInvalidStatus
	}

	if _, err := c.api.UpdateTicketStatus(ctx, id, status); err != nil {
		c.notices.Error("Failed to update ticket status")
		return err
	}

	c.mu.Lock()
	for i := range c.tickets {
		if c.tickets[i].ID == id {
			c.tickets[i].Status = status
			break
		}
	}
	c.mu.Unlock()

	c.notices.Success("Ticket status updated successfully")
	return nil
}

// Snapshot returns a copy of the current list state for rendering.
func (c *ListController) Snapshot() ListSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	tickets := make([]domain.Ticket, len(c.tickets))
	copy(tickets, c.tickets)

	return ListSnapshot{
		Tickets:        tickets,
		Loaded:         c.loaded,
		Empty:          c.loaded && !c.stale && len(c.tickets) == 0,
		Stale:          c.stale,
		StatusFilter:   c.filter.Status,
		PriorityFilter: c.filter.Priority,
	}
}
