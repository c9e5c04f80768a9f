package notification

import "errors"

var (
	ErrNoRecipient  = errors.New("notification has no recipient for this channel")
	ErrUnknownEvent = errors.New("unknown notification event")
	// ErrDeliveryFailed wraps the channel errors of a Dispatcher.Notify call.
	// The Dispatcher has already logged each of them.
	ErrDeliveryFailed = errors.New("notification delivery failed")
)
