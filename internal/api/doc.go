// Package api implements the HTTP enqueue surface: a small authenticated
// JSON API that turns requests into queued jobs.
package api
