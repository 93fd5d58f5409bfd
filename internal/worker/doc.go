// Package worker runs the claim loops that pull jobs off the queue store
// and route them to handlers. One loop per queue type keeps queues isolated:
// a failing or slow handler on one queue never blocks another queue's loop,
// and a panic inside a handler is contained to that one invocation.
//
// Handlers classify their failures through error wrapping: a plain error is
// a recoverable failure and is retried with backoff; an error wrapped with
// Permanent is acknowledged without retry, since retrying cannot help.
package worker
