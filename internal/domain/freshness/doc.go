// Package freshness ranks a user's perishable items by expiration risk.
// It is a pure computation over domain items: no I/O, no clock access.
// Callers are expected to pass items already filtered to freshness-relevant
// statuses (EATEN excluded, exempt categories such as frozen or
// non-perishable goods excluded).
package freshness
