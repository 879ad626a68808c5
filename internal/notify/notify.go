// Package notify models the transient notifications the console surfaces to
// the operator (the toast rail of the original dashboard). Controllers emit
// success/error notices through the Notifier interface; the HTTP layer drains
// a per-session Buffer, and a zerolog sink mirrors every notice into the
// structured log.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level classifies a notice.
type Level string

// Notice levels.
const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one transient notification. Notices are fire-and-forget: once
// drained they are gone.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives operator-facing notifications. Implementations must be
// safe for concurrent use.
type Notifier interface {
	// Success reports a completed operation.
	Success(msg string)
	// Error reports a failed operation. The message is already safe to show.
	Error(msg string)
}

// Buffer is a bounded in-memory Notifier. When full, the oldest notice is
// dropped; a toast rail has no use for stale entries.
type Buffer struct {
	mu      sync.Mutex
	max     int
	notices []Notice

	// now is a test seam.
	now func() time.Time
}

// DefaultBufferSize bounds a session's undrained notices.
const DefaultBufferSize = 50

// NewBuffer returns a Buffer holding at most max notices. Values <= 0 fall
// back to DefaultBufferSize.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultBufferSize
	}
	return &Buffer{max: max, now: time.Now}
}

// Success implements Notifier.
func (b *Buffer) Success(msg string) { b.push(LevelSuccess, msg) }

// Error implements Notifier.
func (b *Buffer) Error(msg string) { b.push(LevelError, msg) }

func (b *Buffer) push(level Level, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.notices) >= b.max {
		b.notices = b.notices[1:]
	}
	b.notices = append(b.notices, Notice{Level: level, Message: msg, At: b.now()})
}

// Drain returns all pending notices in emission order and clears the buffer.
func (b *Buffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}

// Len reports the number of undrained notices.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notices)
}

// Log is a Notifier that mirrors notices into a zerolog logger. Success maps
// to info, Error to warn; remote failures are expected operational noise, not
// server errors.
type Log struct {
	l zerolog.Logger
}

// NewLog returns a logging Notifier.
func NewLog(l zerolog.Logger) Log { return Log{l: l} }

// Success implements Notifier.
func (n Log) Success(msg string) {
	n.l.Info().Str("notice", string(LevelSuccess)).Msg(msg)
}

// Error implements Notifier.
func (n Log) Error(msg string) {
	n.l.Warn().Str("notice", string(LevelError)).Msg(msg)
}

// Multi fans a notice out to several sinks (typically a session Buffer plus
// the structured log).
type Multi []Notifier

// Success implements Notifier.
func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

// Error implements Notifier.
func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}
