// Package api – error taxonomy for remote calls.
//
// Every failed round trip yields an *Error. When the backend body carries a
// structured message ("message" or "error" field), that text is preserved
// verbatim so the console can show it to the operator; otherwise a generic
// fallback applies. Transport failures (DNS, refused, timeout) have Status 0.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of a failure body is read when looking for a
// structured message.
const maxErrorBody = 64 << 10

// GenericFailure is shown when the backend provides no structured message.
const GenericFailure = "request failed"

// Error describes a failed call to the remote backend.
type Error struct {
	// Op is the logical operation name (e.g. "create_ticket").
	Op string
	// Status is the HTTP status code, or 0 for transport-level failures.
	Status int
	// Message is the server-provided message when present, else a generic
	// fallback. Safe to surface to the operator.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// UserMessage extracts the operator-facing message from err. For *Error it is
// the (possibly server-provided) Message; for anything else the fallback is
// returned.
func UserMessage(err error, fallback string) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" && ae.Message != GenericFailure {
		return ae.Message
	}
	return fallback
}

// decodeError builds an *Error from a non-2xx response, preferring the
// structured message field when the body carries one.
func decodeError(op string, resp *http.Response) *Error {
	e := &Error{Op: op, Status: resp.StatusCode, Message: GenericFailure}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(b) == 0 {
		return e
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if jsonErr := json.Unmarshal(b, &payload); jsonErr != nil {
		return e
	}
	switch {
	case payload.Message != "":
		e.Message = payload.Message
	case payload.Error != "":
		e.Message = payload.Error
	}
	return e
}
