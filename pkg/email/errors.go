package email

import (
	"errors"
	"fmt"
)

// ErrDisabled is returned by Send when email.enabled is false. Callers
// treat it as a skipped delivery, not a failure.
var ErrDisabled = errors.New("email: disabled")

type ErrInvalidMessage struct{ Reason string }

func (e ErrInvalidMessage) Error() string { return "email: invalid message: " + e.Reason }

// ErrSend wraps a transport failure from the SMTP relay.
type ErrSend struct {
	Provider string
	Err      error
}

func (e ErrSend) Error() string { return fmt.Sprintf("email: send via %s: %v", e.Provider, e.Err) }
func (e ErrSend) Unwrap() error { return e.Err }
