// Package domain – validation errors.
//
// This file centralizes the input-validation errors for ticket creation and
// status changes. They are caught before any network call is issued and
// surfaced inline; transport-level failures are a separate taxonomy owned by
// the api package.
package domain

import "errors"

var (
	// ErrSubjectRequired is returned when a ticket subject is empty after
	// trimming.
	ErrSubjectRequired = errors.New("subject is required")

	// ErrSubjectTooLong is returned when a subject exceeds MaxSubjectRunes.
	ErrSubjectTooLong = errors.New("subject must be at most 255 characters")

	// ErrDescriptionRequired is returned when a ticket description is empty
	// after trimming.
	ErrDescriptionRequired = errors.New("description is required")

	// ErrInvalidPriority is returned when a priority value is outside the
	// allowed set.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidStatus is returned when a status value is outside the
	// allowed set.
	ErrInvalidStatus = errors.New("invalid status")
)
