package store

import "errors"

// Common store errors. Implementations wrap driver errors into these so
// callers can classify failures without importing driver packages.
var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrReceiptNotFound is returned when a receipt does not exist.
	ErrReceiptNotFound = errors.New("receipt not found")
)
