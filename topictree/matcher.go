package topictree

// Matcher selects the subscriptions removed by Node.Remove.
// A nil Matcher selects every subscription.
type Matcher interface {
	Match(*Subscription) bool
}

// MatcherFunc adapts a function into a Matcher.
type MatcherFunc func(*Subscription) bool

// Match calls f(s).
func (f MatcherFunc) Match(s *Subscription) bool { return f(s) }

// BySubscription matches s by identity. It is the precise way of removing a
// single subscription, wherever it was inserted.
func BySubscription(s *Subscription) Matcher {
	return MatcherFunc(func(candidate *Subscription) bool {
		return candidate == s
	})
}

// ByListener matches every subscription created with the very func value
// listener. Two closures of the same function literal are different
// listeners, and so are two method values of the same method. Wrapping a
// listener, as Always does, yields a new one.
func ByListener(listener Listener) Matcher {
	if listener == nil {
		return MatcherFunc(func(*Subscription) bool { return false })
	}

	id := identify(listener)

	return MatcherFunc(func(candidate *Subscription) bool {
		return candidate.ident == id
	})
}

// ByName matches every subscription whose display name equals name.
// Names are compared case-sensitively; ByName("") matches the unnamed ones.
//
// Deprecated: name matching is kept for callers that cannot hold on to the
// Subscription. Use BySubscription instead.
func ByName(name string) Matcher {
	return MatcherFunc(func(candidate *Subscription) bool {
		return candidate.name == name
	})
}

// All matches every subscription.
func All() Matcher {
	return MatcherFunc(func(*Subscription) bool { return true })
}
