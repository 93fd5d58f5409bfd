// Package store defines the persistence contracts the job handlers call
// outward. Implementations live in internal/platform/postgres; each call is
// its own transaction boundary; the job core never spans a transaction
// across a handler execution.
package store
