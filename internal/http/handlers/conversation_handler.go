// Ticket conversation HTTP handlers.
//
// This file exposes the detail/thread surface of the console:
//   - GET  /tickets/{id}           (load the ticket and its thread)
//   - POST /tickets/{id}/messages  (send a message, optimistic insertion)
//
// A send answers with the full conversation snapshot so the caller sees the
// confirmed thread (or, on failure, the thread with the placeholder rolled
// back and an error notice queued).
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-console/internal/http/middleware"
)

// SendMessageRequest is the JSON payload for posting a message.
type SendMessageRequest struct {
	Message string `json:"message" example:"Replacement toner is on its way."`
}

// GetTicket godoc
// @ID          getTicket
// @Summary     Load a ticket conversation
// @Description Makes the ticket the session's conversation target and returns
// @Description its snapshot with the full message thread. A backend miss
// @Description resolves to 404 and the not-found display state.
// @Tags        Conversation
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Ticket ID"
//
// @Success     200  {object}  console.ConversationSnapshot
// @Failure     400  {object}  handlers.ErrorResponse "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse "Ticket not found"
// @Router      /tickets/{id} [get]
func (h *Handlers) GetTicket(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.Conversation.LoadTicket(c.Request.Context(), id); err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "ticket not found")
		return
	}
	respond(c, http.StatusOK, s.Conversation.Snapshot())
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a message to a ticket
// @Description Appends a message to the ticket's thread. Blank input, a closed
// @Description ticket, or an already in-flight send are rejected without a
// @Description backend request. Supports Idempotency-Key for safe retries.
// @Tags        Conversation
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id               path    int  true  "Ticket ID"
// @Param       Idempotency-Key  header  string  false "Deduplicates retries of the same send"
// @Param       body             body    handlers.SendMessageRequest  true  "Message payload"
//
// @Success     201  {object}  console.ConversationSnapshot
// @Success     200  {object}  console.ConversationSnapshot "Replayed send"
// @Failure     400  {object}  handlers.ErrorResponse "Blank message"
// @Failure     404  {object}  handlers.ErrorResponse "Ticket not found"
// @Failure     409  {object}  handlers.ErrorResponse "Closed ticket or send in flight"
// @Failure     502  {object}  handlers.ErrorResponse "Backend failure"
// @Router      /tickets/{id}/messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	// A replayed send already delivered its message; answer from held state.
	if middleware.IsReplay(c) {
		respond(c, http.StatusOK, s.Conversation.Snapshot())
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message text required")
		return
	}

	ctx := c.Request.Context()

	// Target the requested ticket if the conversation is on another one.
	if s.Conversation.TicketID() != id {
		if err := s.Conversation.LoadTicket(ctx, id); err != nil {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "ticket not found")
			return
		}
	}

	if err := s.Conversation.SendMessage(ctx, req.Message); err != nil {
		failDomain(c, err, "Failed to send message")
		return
	}
	respond(c, http.StatusCreated, s.Conversation.Snapshot())
}
