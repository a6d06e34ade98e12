package inmem

import (
	"fmt"
	"sync"

	"github.com/purposeinplay/go-observer/observer"
	"github.com/purposeinplay/go-observer/pubsub"
)

// Ensure type inmem.Subscription implements interface pubsub.Subscription.
var _ pubsub.Subscription[string, any] = (*Subscription[string, any])(nil)

// Subscription represents a stream of events published to the channels
// of this subscription.
type Subscription[T, P any] struct {
	// Channels this subscription is subscribed to, space separated.
	topics string

	registry *observer.Registry
	handle   *observer.Subscription

	// guards c and closed, so deliver never sends on a closed channel.
	mu     sync.Mutex
	closed bool
	c      chan pubsub.Event[T, P]
}

// Close disconnects the subscription from the registry it was created from.
// Closing twice is a no-op.
func (s *Subscription[T, P]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked()

	return nil
}

// C returns a receive-only go channel of events published
// on the channels this subscription is subscribed to.
func (s *Subscription[T, P]) C() <-chan pubsub.Event[T, P] {
	return s.c
}

func (s *Subscription[T, P]) deliver(ev observer.Event) bool {
	event, ok := ev.Payload.(pubsub.Event[T, P])
	if !ok {
		event = pubsub.Event[T, P]{
			Error: fmt.Errorf("%w: %T on %q", pubsub.ErrUnexpectedPayload, ev.Payload, ev.Topic),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return true
	}

	select {
	case s.c <- event:

	// In case no one reads the subscription channel
	// remove the subscription.
	default:
		s.closeLocked()
	}

	return true
}

func (s *Subscription[T, P]) closeLocked() {
	if s.closed {
		return
	}

	s.closed = true

	s.registry.Unsubscribe(s.topics, observer.BySubscription(s.handle))

	close(s.c)
}
