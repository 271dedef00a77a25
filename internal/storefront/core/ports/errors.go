package ports

import "errors"

var ErrCorruptSession = errors.New("session: corrupt entry")

// IsAuthFailure reports whether err is a backend rejection of the caller's
// token. Callers leave the toast to the HTTP layer, which queues the
// session-expired warning for these.
func IsAuthFailure(err error) bool {
	var af interface{ Unauthorized() bool }
	return errors.As(err, &af) && af.Unauthorized()
}
