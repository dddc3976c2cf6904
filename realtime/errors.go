package realtime

import (
	"errors"
	"fmt"
)

// ErrIdentityRequired is returned when a lifecycle operation is requested
// without an identity attached. The controller never applies unattributed
// state changes.
var ErrIdentityRequired = errors.New("an identity is required to request a session transition")

// ErrSessionNotFound is returned when no lecture matches the given id or room token
var ErrSessionNotFound = errors.New("session not found")

// TransitionError reports a lifecycle request that is not valid for the
// session's current status. The session is left unchanged and nothing is
// broadcast.
type TransitionError struct {
	Event  string
	Status string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed for session in status %q", e.Event, e.Status)
}
