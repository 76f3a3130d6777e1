package domain

import "errors"

// Sentinel errors for the availability pipeline. Callers match them with
// errors.Is; sites that return them wrap with fmt.Errorf("...: %w", ...) to
// add the failing channel, unit, or range.
var (
	// ErrInvalidInterval marks a malformed record interval (start >= end).
	// Fatal to the channel being computed, not to the scan unit.
	ErrInvalidInterval = errors.New("invalid record interval")

	// ErrInvalidRange marks malformed scan bounds (end <= start).
	ErrInvalidRange = errors.New("invalid scan range")

	// ErrArchiveUnavailable marks a retrieval failure against the waveform
	// archive. Isolates the (station, year) unit that hit it.
	ErrArchiveUnavailable = errors.New("archive unavailable")

	// ErrNotFound marks a missing persisted availability table.
	ErrNotFound = errors.New("availability table not found")

	// ErrEmptyRange marks a visualisation request with no rows in range.
	ErrEmptyRange = errors.New("no availability rows in range")
)
