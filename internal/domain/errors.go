package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrMissingItemType is returned when an item has no item type attached.
	// Expiration cannot be computed without one, so this is a precondition
	// violation rather than something to default around.
	ErrMissingItemType = errors.New("item has no item type")

	// ErrUnknownItemStatus is returned when a status string is not one of
	// the item status enum values.
	ErrUnknownItemStatus = errors.New("unknown item status")
)
