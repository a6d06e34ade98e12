// Package inmem implements the pubsub.PublishSubscriber interface on top of
// an in process observer.Registry.
package inmem

import (
	"fmt"
	"strings"

	"github.com/purposeinplay/go-observer/observer"
	"github.com/purposeinplay/go-observer/pubsub"
	"github.com/purposeinplay/go-observer/topictree"
)

// Ensure type inmem.PubSub implements interface pubsub.PublishSubscriber.
var _ pubsub.PublishSubscriber[string, any] = (*PubSub[string, any])(nil)

// PubSub delivers events through a Registry. Channels are registry topics,
// so an event published on a channel reaches the subscriptions of its
// ancestors too.
type PubSub[T, P any] struct {
	registry *observer.Registry

	// eventBufferSize is the buffer size of the channel for each subscription.
	eventBufferSize int
}

// NewPubSub returns a PubSub publishing through registry. A nil registry is
// replaced by a new one.
func NewPubSub[T, P any](
	registry *observer.Registry,
	eventBufferSize int,
) *PubSub[T, P] {
	if registry == nil {
		registry = observer.New()
	}

	return &PubSub[T, P]{
		registry:        registry,
		eventBufferSize: eventBufferSize,
	}
}

// Publish publishes event to all the subscriptions of the channels provided.
func (ps *PubSub[T, P]) Publish(event pubsub.Event[T, P], channels ...string) error {
	if err := validate(channels); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	for _, channel := range channels {
		ps.registry.Publish(channel, event)
	}

	return nil
}

// Subscribe creates a new subscription for the provided channels.
//
// Delivery never blocks the publisher: when the buffer of a subscription is
// full the subscription is closed, and its reader sees the channel closed.
func (ps *PubSub[T, P]) Subscribe(
	channels ...string,
) (
	pubsub.Subscription[T, P],
	error,
) {
	if err := validate(channels); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	sub := &Subscription[T, P]{
		topics:   strings.Join(channels, " "),
		c:        make(chan pubsub.Event[T, P], ps.eventBufferSize),
		registry: ps.registry,
	}

	handle, err := ps.registry.Subscribe(
		sub.topics,
		sub.deliver,
		observer.WithName("inmem"),
	)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	sub.handle = handle

	return sub, nil
}

func validate(channels []string) error {
	if len(channels) == 0 {
		return pubsub.ErrNoChannel
	}

	for _, channel := range channels {
		if err := topictree.Validate(channel); err != nil {
			return err
		}
	}

	return nil
}
