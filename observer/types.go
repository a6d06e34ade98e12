package observer

import "github.com/purposeinplay/go-observer/topictree"

type (
	// Event is handed to listeners.
	Event = topictree.Event
	// Listener handles an Event. Returning false stops the dispatch.
	Listener = topictree.Listener
	// Subscription is the handle returned by Subscribe and Once.
	Subscription = topictree.Subscription
	// Matcher selects the subscriptions dropped by Unsubscribe.
	Matcher = topictree.Matcher
)

// PanicHandler receives the value of a recovered listener panic along with
// the event the listener was fired with.
type PanicHandler func(ev Event, recovered any)

// Always adapts fn into a Listener that never stops the dispatch.
func Always(fn func(Event)) Listener {
	return topictree.Always(fn)
}

// BySubscription matches a subscription by identity.
func BySubscription(s *Subscription) Matcher {
	return topictree.BySubscription(s)
}

// ByListener matches the subscriptions created with the very func value
// listener. Closures of the same function literal are told apart.
func ByListener(listener Listener) Matcher {
	return topictree.ByListener(listener)
}

// ByName matches the subscriptions registered with WithName(name).
// ByName("") matches those registered without a name.
//
// Deprecated: hold on to the Subscription and use BySubscription.
func ByName(name string) Matcher {
	return topictree.ByName(name) //nolint:staticcheck // legacy convenience
}

// All matches every subscription of a topic.
func All() Matcher {
	return topictree.All()
}
