package pubsub

import "github.com/purposeinplay/go-observer/errors"

// Error codes of the pubsub package.
const (
	CodeNoChannel errors.ErrorCode = iota + 200
	CodeUnexpectedPayload
)

var (
	// ErrNoChannel is returned when Publish or Subscribe is called
	// without channels.
	ErrNoChannel = &errors.Error{
		Type:    errors.ErrorTypeInvalid,
		Code:    CodeNoChannel,
		Details: "no channel given",
	}

	// ErrUnexpectedPayload is carried by the Event delivered to a
	// subscription when something other than an Event of the subscription
	// type was published on one of its channels.
	ErrUnexpectedPayload = &errors.Error{
		Type:    errors.ErrorTypeInvalid,
		Code:    CodeUnexpectedPayload,
		Details: "unexpected payload",
	}
)
