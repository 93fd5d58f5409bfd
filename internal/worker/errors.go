package worker

import "errors"

// permanentError marks a failure that retrying cannot fix, such as a
// malformed payload or a downstream service explicitly rejecting the work.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return "permanent: " + e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the router acknowledges the job without retrying.
// Returns nil when err is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err (or anything it wraps) was marked
// permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
