package booking

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("booking: session not found")
	// ErrSuperseded is returned when a schedule fetch finished after a newer
	// provider change; its result is discarded.
	ErrSuperseded = errors.New("booking: schedule fetch superseded by a newer request")
	// ErrConflict is returned when optimistic updates keep colliding.
	ErrConflict = errors.New("booking: concurrent session update")
	// ErrProviderRequired rejects a start or change without a provider id.
	ErrProviderRequired = errors.New("booking: providerId is required")
	// ErrNoSlotSelected rejects a submit before a slot is chosen.
	ErrNoSlotSelected = errors.New("booking: select a date and time slot first")
)
