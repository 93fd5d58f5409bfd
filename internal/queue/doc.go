// Package queue defines the job envelope, the typed payloads routed through
// each queue, and the Store contract every backing implementation satisfies.
//
// Each queue type carries exactly one payload kind; the pairing is checked
// when a job is enqueued and again when its payload is decoded, so handlers
// never see an untyped blob. Delivery is at-least-once: a claimed envelope
// that is never acknowledged becomes reclaimable after the store's
// visibility timeout, and an envelope that exhausts its attempts moves to a
// terminal dead state and is reported through a DeadLetterSink, never
// silently dropped.
package queue
