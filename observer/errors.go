package observer

import (
	"github.com/purposeinplay/go-observer/errors"
	"github.com/purposeinplay/go-observer/topictree"
)

// CodeTopicNotFound is the code of the errors returned by Run for topics that
// were never subscribed to.
const CodeTopicNotFound errors.ErrorCode = 100

var (
	// ErrInvalidArgument matches every error returned for a call that breaks
	// an argument contract, such as a nil listener or a malformed topic.
	ErrInvalidArgument = &errors.Error{Type: errors.ErrorTypeInvalid}

	// ErrTopicNotFound is returned by Run when no node exists for the topic.
	ErrTopicNotFound = &errors.Error{
		Type: errors.ErrorTypeNotFound,
		Code: CodeTopicNotFound,
	}

	// ErrNilListener is returned when subscribing a nil listener.
	ErrNilListener = topictree.ErrNilListener
)
