// Package api implements the HTTP client for the remote support backend.
//
// The client is a thin, authenticated passthrough: every method issues one
// request, decodes the response body into a domain record, and returns a typed
// *Error for any non-2xx outcome. It performs no retries and no caching; the
// controllers in internal/console own all state reconciliation.
//
// Observability: each call is counted and timed per logical operation via
// Prometheus (see metrics.go) and logged at debug level with the request
// correlation id.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-support-console/internal/domain"
)

// TokenSource supplies the bearer credential attached to authenticated calls.
// The session store in internal/auth is the production implementation; tests
// typically use StaticToken.
type TokenSource interface {
	// Token returns the current bearer token, or "" when no session exists.
	Token() string
}

// StaticToken is a fixed-value TokenSource.
type StaticToken string

// Token returns the static value.
func (s StaticToken) Token() string { return string(s) }

// Filter narrows a ticket listing by status and/or priority. Zero values mean
// "no filter" on that axis; at most one value per axis is ever active.
type Filter struct {
	Status   domain.Status
	Priority domain.Priority
}

// query encodes the filter as URL query parameters, omitting unset axes.
func (f Filter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	return q
}

// Client calls the remote support backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (e.g. for tests or
// custom transports).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger attaches a logger used for request-level debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New constructs a Client for the backend at baseURL. Trailing slashes on
// baseURL are ignored.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a shallow copy of c that authenticates with the given
// bearer token. The copy shares the underlying *http.Client, so per-session
// clients reuse one connection pool.
func (c *Client) WithToken(tok string) *Client {
	cp := *c
	cp.tokens = StaticToken(tok)
	return &cp
}

// ListTickets returns the tickets matching f, most recent ordering as served
// by the backend.
func (c *Client) ListTickets(ctx context.Context, f Filter) ([]domain.Ticket, error) {
	path := "/support/tickets"
	if q := f.query().Encode(); q != "" {
		path += "?" + q
	}
	var out []domain.Ticket
	if err := c.do(ctx, opListTickets, http.MethodGet, path, true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTicket fetches one ticket with its full message thread embedded.
func (c *Client) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	var out domain.Ticket
	if err := c.do(ctx, opGetTicket, http.MethodGet, "/support/tickets/"+formatID(id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTicket submits a new ticket and returns the server-confirmed record.
// Input validation is the caller's responsibility (domain.CreateTicketInput).
func (c *Client) CreateTicket(ctx context.Context, in domain.CreateTicketInput) (*domain.Ticket, error) {
	var out domain.Ticket
	if err := c.do(ctx, opCreateTicket, http.MethodPost, "/support/tickets", true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTicket removes the ticket with the given id.
func (c *Client) DeleteTicket(ctx context.Context, id int64) error {
	return c.do(ctx, opDeleteTicket, http.MethodDelete, "/support/tickets/"+formatID(id), true, nil, nil)
}

// UpdateTicketStatus patches only the status field and returns the updated
// ticket as confirmed by the backend.
func (c *Client) UpdateTicketStatus(ctx context.Context, id int64, status domain.Status) (*domain.Ticket, error) {
	body := struct {
		Status domain.Status `json:"status"`
	}{Status: status}
	var out domain.Ticket
	if err := c.do(ctx, opUpdateStatus, http.MethodPatch, "/support/tickets/"+formatID(id)+"/status", true, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage posts a message to the ticket's thread and returns the
// server-confirmed record (with its assigned id and timestamp).
func (c *Client) SendMessage(ctx context.Context, ticketID int64, text string) (*domain.Message, error) {
	body := struct {
		Message string `json:"message"`
	}{Message: text}
	var out domain.Message
	if err := c.do(ctx, opSendMessage, http.MethodPost, "/support/tickets/"+formatID(ticketID)+"/messages", true, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages returns the recent-messages overview across all tickets.
func (c *Client) ListMessages(ctx context.Context) ([]domain.Message, error) {
	var out []domain.Message
	if err := c.do(ctx, opListMessages, http.MethodGet, "/support/messages", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers returns the user directory.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := c.do(ctx, opListUsers, http.MethodGet, "/users/", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser fetches a single user profile.
func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, opGetUser, http.MethodGet, "/users/id/"+formatID(id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUp registers a new account. Unauthenticated.
func (c *Client) SignUp(ctx context.Context, name, email, password string) error {
	body := struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Name: name, Email: email, Password: password}
	return c.do(ctx, opSignUp, http.MethodPost, "/auth/signup", false, body, nil)
}

// LogIn exchanges credentials for a bearer token. Unauthenticated.
func (c *Client) LogIn(ctx context.Context, email, password string) (string, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, opLogIn, http.MethodPost, "/auth/login", false, body, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// do issues a single JSON round trip. When in is non-nil it is marshalled as
// the request body; when out is non-nil the 2xx response body is decoded into
// it. Non-2xx outcomes return *Error with the server message when one is
// present in the body.
func (c *Client) do(ctx context.Context, op string, method, path string, authed bool, in, out any) error {
	start := time.Now()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	rid := uuid.NewString()
	req.Header.Set("X-Request-ID", rid)
	if authed {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		observe(op, statusTransportError, time.Since(start))
		c.log.Debug().Str("op", op).Str("request_id", rid).Err(err).Msg("api call failed")
		return &Error{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	observe(op, strconv.Itoa(resp.StatusCode), time.Since(start))
	c.log.Debug().
		Str("op", op).
		Str("request_id", rid).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: "malformed response body"}
	}
	return nil
}

// formatID renders a numeric id as a path segment.
func formatID(id int64) string { return strconv.FormatInt(id, 10) }
