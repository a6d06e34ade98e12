package topictree

import (
	"github.com/purposeinplay/go-observer/errors"
)

// Error codes of the invalid-argument errors returned by this package.
const (
	CodeNilListener errors.ErrorCode = iota + 1
	CodeEmptySegment
)

// ErrNilListener is returned when a Subscription is built without a listener.
var ErrNilListener = &errors.Error{
	Type:    errors.ErrorTypeInvalid,
	Code:    CodeNilListener,
	Details: "listener must not be nil",
}
