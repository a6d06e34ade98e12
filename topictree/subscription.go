package topictree

import (
	"context"
	"reflect"
	"sync"
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Event is handed to a Listener when a topic it is subscribed to is published.
type Event struct {
	// Context of the publish call.
	Context context.Context

	// Topic as published, which may be deeper than the topic the listener
	// subscribed to.
	Topic string

	// Payload given to the publish call.
	Payload any

	// Receiver bound to the subscription at subscribe time.
	Receiver any

	// Subscription being fired.
	Subscription *Subscription
}

// Listener handles an Event. Returning false stops the dispatch.
type Listener func(Event) bool

// Always adapts fn into a Listener that never stops the dispatch.
func Always(fn func(Event)) Listener {
	return func(ev Event) bool {
		fn(ev)
		return true
	}
}

// Subscription binds a Listener to a receiver and a priority.
// A Subscription may be inserted in several nodes at once and is matched by
// identity when removed with BySubscription.
type Subscription struct {
	id       uuid.UUID
	name     string
	receiver any
	listener Listener
	ident    listenerID
	priority int

	// once subscriptions remember the nodes they were inserted in so the
	// first trigger can detach them from all of them.
	once  bool
	fired atomic.Bool
	mu    sync.Mutex
	nodes []*Node
}

// NewSubscription returns a Subscription firing listener with receiver bound.
// The name is only used by ByName.
func NewSubscription(
	receiver any,
	listener Listener,
	priority int,
	name string,
) (*Subscription, error) {
	if listener == nil {
		return nil, ErrNilListener
	}

	return &Subscription{
		id:       uuid.New(),
		name:     name,
		receiver: receiver,
		listener: listener,
		ident:    identify(listener),
		priority: priority,
	}, nil
}

// NewOnceSubscription is like NewSubscription, but the returned Subscription
// removes itself from every node it was inserted in the first time it fires,
// and fires at most once.
func NewOnceSubscription(
	receiver any,
	listener Listener,
	priority int,
	name string,
) (*Subscription, error) {
	s, err := NewSubscription(receiver, listener, priority, name)
	if err != nil {
		return nil, err
	}

	s.once = true

	return s, nil
}

// ID identifies the subscription in logs and traces.
func (s *Subscription) ID() uuid.UUID { return s.id }

// Name returns the display name given at construction.
func (s *Subscription) Name() string { return s.name }

// Receiver returns the receiver the listener is invoked with.
func (s *Subscription) Receiver() any { return s.receiver }

// Priority returns the priority of the subscription.
func (s *Subscription) Priority() int { return s.priority }

// Once reports whether the subscription detaches itself after firing.
func (s *Subscription) Once() bool { return s.once }

// Trigger fires the listener with ev. It reports whether the dispatch may
// continue, and whether the listener ran at all: a once subscription that
// already fired is skipped.
func (s *Subscription) Trigger(ev Event) (ok, ran bool) {
	if s.once {
		if !s.fired.CompareAndSwap(false, true) {
			return true, false
		}

		s.detach()
	}

	ev.Receiver = s.receiver
	ev.Subscription = s

	return s.listener(ev), true
}

// listenerID identifies a func value: the code it runs and the closure
// object it was created as. Closures of one literal share code but not
// closure objects.
type listenerID struct {
	pc      uintptr
	closure unsafe.Pointer
}

func identify(listener Listener) listenerID {
	return listenerID{
		pc:      reflect.ValueOf(listener).Pointer(),
		closure: *(*unsafe.Pointer)(unsafe.Pointer(&listener)),
	}
}

func (s *Subscription) track(n *Node) {
	if !s.once {
		return
	}

	s.mu.Lock()
	s.nodes = append(s.nodes, n)
	s.mu.Unlock()
}

func (s *Subscription) detach() {
	s.mu.Lock()
	nodes := s.nodes
	s.nodes = nil
	s.mu.Unlock()

	for _, n := range nodes {
		n.Remove(BySubscription(s))
	}
}
