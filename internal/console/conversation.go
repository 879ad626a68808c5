// Package console – ticket conversation controller.
//
// ConversationController loads one ticket with its message thread and sends
// new messages with optimistic feedback. A send appends a pending placeholder
// immediately, then either swaps it for the server-confirmed message (matched
// by its local correlation id) or removes it on failure; outside that window
// the held thread is identical to the server's. Placeholder ids are negative
// so they can never collide with server-assigned ids.
//
// Switching the target ticket re-enters the loading phase; any in-flight load
// or send for the previous target resolves against a stale generation and is
// discarded, never merged.
package console

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-support-console/internal/api"
	"github.com/tbourn/go-support-console/internal/domain"
	"github.com/tbourn/go-support-console/internal/notify"
)

// ConversationAPI is the backend surface the conversation controller depends
// on. Implementations must be safe for concurrent use and honor the context.
type ConversationAPI interface {
	// GetTicket fetches a ticket with its embedded message thread.
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)
	// SendMessage posts a message and returns the confirmed record.
	SendMessage(ctx context.Context, ticketID int64, text string) (*domain.Message, error)
}

// Phase is the display state of the conversation view.
type Phase string

// Conversation phases. Loaded is not terminal: changing the target ticket id
// re-enters Loading. NotFound is terminal for the current target only.
const (
	PhaseIdle     Phase = "idle"
	PhaseLoading  Phase = "loading"
	PhaseLoaded   Phase = "loaded"
	PhaseNotFound Phase = "not_found"
)

// Entry is one thread entry as rendered. Pending marks an optimistic
// placeholder that the server has not yet confirmed.
type Entry struct {
	domain.Message
	Pending bool `json:"pending,omitempty"`
}

// ConversationSnapshot is a point-in-time copy of the conversation state.
type ConversationSnapshot struct {
	Phase Phase `json:"phase"`
	// Ticket is the loaded ticket without its embedded thread (Messages
	// carries the thread, placeholder tagging included).
	Ticket   *domain.Ticket `json:"ticket,omitempty"`
	Messages []Entry        `json:"messages"`
	// Closed mirrors the derived is-closed check that disables the input.
	Closed bool `json:"closed"`
	// Sending is true while a send is in flight (send control disabled).
	Sending bool `json:"sending"`
	// ScrollTo is the id of the newest entry; it changes whenever the thread
	// changes and anchors the view's auto-scroll. Zero when the thread is
	// empty.
	ScrollTo int64 `json:"scrollTo,omitempty"`
}

// ConversationController owns the state of one conversation view.
// All methods are safe for concurrent use.
type ConversationController struct {
	api     ConversationAPI
	notices notify.Notifier
	log     zerolog.Logger

	mu          sync.Mutex
	phase       Phase
	ticketID    int64
	ticket      *domain.Ticket
	entries     []Entry
	gen         uint64
	sending     bool
	nextLocalID int64

	// now is a test seam for placeholder timestamps.
	now func() time.Time
}

// NewConversationController constructs a ConversationController in the idle
// phase.
func NewConversationController(a ConversationAPI, n notify.Notifier, log zerolog.Logger) *ConversationController {
	return &ConversationController{
		api:     a,
		notices: n,
		log:     log,
		phase:   PhaseIdle,
		now:     time.Now,
	}
}

// LoadTicket fetches the ticket and its thread, replacing whatever was held
// before. While the fetch is in flight the view is in the loading phase. A
// failure surfaces a notification and resolves to the not-found display. A
// result arriving after a newer LoadTicket started is discarded.
func (c *ConversationController) LoadTicket(ctx context.Context, id int64) error {
	tr := otel.Tracer("console/ConversationController")
	ctx, span := tr.Start(ctx, "LoadTicket", trace.WithAttributes(attribute.Int64("ticket.id", id)))
	defer span.End()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.phase = PhaseLoading
	c.ticketID = id
	c.sending = false
	c.mu.Unlock()

	t, err := c.api.GetTicket(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug().Int64("ticket_id", id).Msg("discarding superseded ticket load")
		return nil
	}
	if err != nil {
		c.phase = PhaseNotFound
		c.ticket = nil
		c.entries = nil
		c.notices.Error("Failed to load ticket details")
		return err
	}

	entries := make([]Entry, len(t.Messages))
	for i, m := range t.Messages {
		entries[i] = Entry{Message: m}
	}
	c.phase = PhaseLoaded
	c.ticket = t
	c.entries = entries
	return nil
}

// SendMessage sends text to the loaded ticket with optimistic local
// insertion. It is a no-op (no request, thread unchanged) when the text is
// blank, the ticket is closed, or a send is already in flight. The
// placeholder is swapped in place for the confirmed message on success and
// removed entirely on failure; the in-flight flag clears on both paths.
func (c *ConversationController) SendMessage(ctx context.Context, text string) error {
	tr := otel.Tracer("console/ConversationController")
	ctx, span := tr.Start(ctx, "SendMessage")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.phase != PhaseLoaded || c.ticket == nil {
		c.mu.Unlock()
		return ErrNoTicket
	}
	if c.ticket.Closed() {
		c.mu.Unlock()
		return ErrTicketClosed
	}
	if c.sending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.sending = true
	c.nextLocalID--
	localID := c.nextLocalID
	c.entries = append(c.entries, Entry{
		Message: domain.Message{
			ID:       localID,
			Message:  text,
			SenderID: 0,
			SentAt:   c.now(),
		},
		Pending: true,
	})
	id := c.ticketID
	gen := c.gen
	c.mu.Unlock()

	span.SetAttributes(attribute.Int64("ticket.id", id))
	m, err := c.api.SendMessage(ctx, id, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// The view moved to another ticket mid-send; the placeholder is
		// already gone and the result belongs to a thread we no longer hold.
		c.log.Debug().Int64("ticket_id", id).Msg("discarding send result for superseded conversation")
		return nil
	}
	c.sending = false
	if err != nil {
		c.removeEntry(localID)
		c.notices.Error("Failed to send message")
		return err
	}
	c.replaceEntry(localID, Entry{Message: *m})
	c.notices.Success("Message sent")
	return nil
}

// IsClosed reports whether the loaded ticket's status is CLOSED. When true,
// the input and send control are disabled and the view shows an explanatory
// banner.
func (c *ConversationController) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseLoaded && c.ticket != nil && c.ticket.Closed()
}

// TicketID returns the current target ticket id (zero when idle).
func (c *ConversationController) TicketID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticketID
}

// Snapshot returns a copy of the conversation state for rendering.
func (c *ConversationController) Snapshot() ConversationSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)

	var ticket *domain.Ticket
	closed := false
	if c.ticket != nil {
		t := *c.ticket
		t.Messages = nil
		ticket = &t
		closed = t.Closed()
	}

	var scrollTo int64
	if len(entries) > 0 {
		scrollTo = entries[len(entries)-1].ID
	}

	return ConversationSnapshot{
		Phase:    c.phase,
		Ticket:   ticket,
		Messages: entries,
		Closed:   closed,
		Sending:  c.sending,
		ScrollTo: scrollTo,
	}
}

// removeEntry drops the entry with the given id; order of the remaining
// entries is preserved.
func (c *ConversationController) removeEntry(id int64) {
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

// replaceEntry swaps the entry with the given id in place, keeping its
// sequence position.
func (c *ConversationController) replaceEntry(id int64, e Entry) {
	for i := range c.entries {
		if c.entries[i].ID == id {
			c.entries[i] = e
			return
		}
	}
}
