package observer_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/matryer/is"
	"github.com/purposeinplay/go-observer/errors"
	"github.com/purposeinplay/go-observer/observer"
)

type calls struct {
	mu    sync.Mutex
	names []string
}

func (c *calls) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.names = append(c.names, name)
}

func (c *calls) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.names...)
}

func (c *calls) listener(name string, ret bool) observer.Listener {
	return func(observer.Event) bool {
		c.add(name)
		return ret
	}
}

// labelled returns a new closure of one literal on every call.
//
//go:noinline
func (c *calls) labelled(name string) observer.Listener {
	return func(observer.Event) bool {
		c.add(name)
		return true
	}
}

func TestRegistry_Publish(t *testing.T) {
	t.Parallel()

	t.Run("PriorityOrdering", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		_, err := r.Subscribe("evt", c.listener("p5", true), observer.WithPriority(5))
		i.NoErr(err)

		_, err = r.Subscribe("evt", c.listener("p1", true), observer.WithPriority(1))
		i.NoErr(err)

		_, err = r.Subscribe("evt", c.listener("p5-second", true), observer.WithPriority(5))
		i.NoErr(err)

		_, err = r.Subscribe("evt", c.listener("p-3", true), observer.WithPriority(-3))
		i.NoErr(err)

		i.True(r.Publish("evt", nil))
		i.Equal(c.get(), []string{"p-3", "p1", "p5", "p5-second"})
	})

	t.Run("SpecificityBubbling", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		for _, topic := range []string{"a", "a.b", "a.b.c", ""} {
			_, err := r.Subscribe(topic, c.listener("on "+topic, true))
			i.NoErr(err)
		}

		i.True(r.Publish("a.b.c", nil))
		i.Equal(c.get(), []string{"on a.b.c", "on a.b", "on a", "on "})
	})

	t.Run("ShortCircuit", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		_, err := r.Subscribe("a", c.listener("parent", true))
		i.NoErr(err)

		_, err = r.Subscribe("a.b", c.listener("stop", false), observer.WithPriority(1))
		i.NoErr(err)

		_, err = r.Subscribe("a.b", c.listener("sibling", true), observer.WithPriority(2))
		i.NoErr(err)

		i.True(!r.Publish("a.b", nil))
		i.Equal(c.get(), []string{"stop"})

		i.True(r.Publish("a", nil))
		i.Equal(c.get(), []string{"stop", "parent"})

		stats := r.Stats()
		i.Equal(stats.Published, uint64(2))
		i.Equal(stats.Halted, uint64(1))
		i.Equal(stats.Delivered, uint64(2))
	})

	t.Run("UnknownTopic", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		i.True(r.Publish("nope.nope", nil))

		r.Unsubscribe("nope", observer.All())
		r.Unsubscribe("nope.nope", nil)

		_, err := r.Subscribe("a", c.listener("a", true))
		i.NoErr(err)

		i.True(r.Publish("a.x.y", nil))
		i.Equal(c.get(), []string{"a"})
		i.Equal(r.Topics(), []string{"a"})
	})

	t.Run("RootTopic", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		_, err := r.Subscribe("", c.listener("root", true))
		i.NoErr(err)

		_, err = r.Subscribe("a", c.listener("a", true))
		i.NoErr(err)

		i.True(r.Publish("", nil))
		i.Equal(c.get(), []string{"root"})
	})

	t.Run("PayloadAndReceiver", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		type host struct{ name string }

		def := &host{name: "default"}
		own := &host{name: "own"}

		r := observer.New(observer.WithDefaultReceiver(def))

		var got []observer.Event

		record := func(ev observer.Event) bool {
			got = append(got, ev)
			return true
		}

		s1, err := r.Subscribe("order.created", record)
		i.NoErr(err)

		s2, err := r.Subscribe("order", record, observer.WithReceiver(own))
		i.NoErr(err)

		i.True(r.Publish("order.created", 42))

		i.Equal(len(got), 2)

		i.Equal(got[0].Topic, "order.created")
		i.Equal(got[0].Payload, 42)
		i.Equal(got[0].Receiver, def)
		i.Equal(got[0].Subscription, s1)

		i.Equal(got[1].Topic, "order.created")
		i.Equal(got[1].Receiver, own)
		i.Equal(got[1].Subscription, s2)
	})

	t.Run("DefaultPriority", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New(observer.WithDefaultPriority(10))

		_, err := r.Subscribe("evt", c.listener("default", true))
		i.NoErr(err)

		_, err = r.Subscribe("evt", c.listener("urgent", true), observer.WithPriority(0))
		i.NoErr(err)

		i.True(r.Publish("evt", nil))
		i.Equal(c.get(), []string{"urgent", "default"})
	})
}

// Subscribe cbA at priority 1 and cbB at priority 5 on "evt".
func TestRegistry_PriorityScenario(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		aReturns      bool
		expectedCalls []string
		expectedOK    bool
	}{
		"BothFire": {
			aReturns:      true,
			expectedCalls: []string{"cbA(42)", "cbB(42)"},
			expectedOK:    true,
		},
		"AStops": {
			aReturns:      false,
			expectedCalls: []string{"cbA(42)"},
			expectedOK:    false,
		},
	}

	for name, test := range tests {
		test := test

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			i := is.New(t)

			var got []string

			cbA := func(ev observer.Event) bool {
				got = append(got, fmt.Sprintf("cbA(%v)", ev.Payload))
				return test.aReturns
			}

			cbB := func(ev observer.Event) bool {
				got = append(got, fmt.Sprintf("cbB(%v)", ev.Payload))
				return true
			}

			r := observer.New()

			_, err := r.Subscribe("evt", cbB, observer.WithPriority(5))
			i.NoErr(err)

			_, err = r.Subscribe("evt", cbA, observer.WithPriority(1))
			i.NoErr(err)

			i.Equal(r.Publish("evt", 42), test.expectedOK)
			i.Equal(got, test.expectedCalls)
		})
	}
}

func TestRegistry_Run(t *testing.T) {
	t.Parallel()

	newRegistry := func(t *testing.T) (*observer.Registry, *calls) {
		t.Helper()

		var c calls

		r := observer.New()

		_, err := r.Subscribe("a.b", c.listener("a.b", true))
		is.New(t).NoErr(err)

		_, err = r.Subscribe("a", c.listener("a", true))
		is.New(t).NoErr(err)

		return r, &c
	}

	t.Run("PublishBubbles", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		r, c := newRegistry(t)

		i.True(r.Publish("a.b", nil))
		i.Equal(c.get(), []string{"a.b", "a"})
	})

	t.Run("RunDeepest", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		r, c := newRegistry(t)

		ok, err := r.Run("a.b", nil)
		i.NoErr(err)
		i.True(ok)
		i.Equal(c.get(), []string{"a.b"})
	})

	t.Run("RunParent", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		r, c := newRegistry(t)

		ok, err := r.Run("a", nil)
		i.NoErr(err)
		i.True(ok)
		i.Equal(c.get(), []string{"a"})
	})

	t.Run("NotFound", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		r, c := newRegistry(t)

		ok, err := r.Run("a.b.c", nil)
		i.True(!ok)
		i.True(errors.Is(err, observer.ErrTopicNotFound))
		i.True(errors.IsErrorType(err, errors.ErrorTypeNotFound))
		i.Equal(len(c.get()), 0)
		i.Equal(r.Stats().NotFound, uint64(1))
	})

	t.Run("Waypoint", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		_, err := r.Subscribe("x.y.z", c.listener("x.y.z", true))
		i.NoErr(err)

		ok, err := r.Run("x.y", nil)
		i.NoErr(err)
		i.True(ok)
		i.Equal(len(c.get()), 0)
	})

	t.Run("Halted", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		_, err := r.Subscribe("a", c.listener("stop", false))
		i.NoErr(err)

		_, err = r.Subscribe("a", c.listener("after", true))
		i.NoErr(err)

		ok, err := r.Run("a", nil)
		i.NoErr(err)
		i.True(!ok)
		i.Equal(c.get(), []string{"stop"})
	})
}

func TestRegistry_Reentrancy(t *testing.T) {
	t.Parallel()

	t.Run("UnsubscribeDuringDispatch", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		var second *observer.Subscription

		first, err := r.Subscribe("evt", func(observer.Event) bool {
			c.add("first")
			r.Unsubscribe("evt", observer.BySubscription(second))

			return true
		})
		i.NoErr(err)

		second, err = r.Subscribe("evt", c.listener("second", true))
		i.NoErr(err)

		i.True(r.Publish("evt", nil))
		i.Equal(c.get(), []string{"first", "second"})

		i.True(r.Publish("evt", nil))
		i.Equal(c.get(), []string{"first", "second", "first"})

		r.Unsubscribe("evt", observer.BySubscription(first))

		i.True(r.Publish("evt", nil))
		i.Equal(c.get(), []string{"first", "second", "first"})
	})

	t.Run("UnsubscribeSelf", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		var self observer.Listener

		self = func(observer.Event) bool {
			c.add("self")
			r.Unsubscribe("evt", observer.ByListener(self))

			return true
		}

		_, err := r.Subscribe("evt", self)
		i.NoErr(err)

		_, err = r.Subscribe("", c.listener("root", true))
		i.NoErr(err)

		i.True(r.Publish("evt", nil))
		i.True(r.Publish("evt", nil))
		i.Equal(c.get(), []string{"self", "root", "root"})
	})

	t.Run("SubscribeDuringDispatch", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		_, err := r.Subscribe("a.b", func(observer.Event) bool {
			c.add("a.b")

			_, err := r.Subscribe("a", c.listener("late", true))
			i.NoErr(err)

			return true
		})
		i.NoErr(err)

		_, err = r.Subscribe("a", c.listener("a", true))
		i.NoErr(err)

		i.True(r.Publish("a.b", nil))
		i.Equal(c.get(), []string{"a.b", "a"})

		r.Unsubscribe("a.b", nil)

		i.True(r.Publish("a.b", nil))
		i.Equal(c.get(), []string{"a.b", "a", "a", "late"})
	})

	t.Run("NestedPublish", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		_, err := r.Subscribe("outer", func(observer.Event) bool {
			c.add("outer")
			i.True(r.Publish("inner", nil))
			c.add("outer done")

			return true
		})
		i.NoErr(err)

		_, err = r.Subscribe("inner", c.listener("inner", true))
		i.NoErr(err)

		i.True(r.Publish("outer", nil))
		i.Equal(c.get(), []string{"outer", "inner", "outer done"})
	})
}

func TestRegistry_Unsubscribe(t *testing.T) {
	t.Parallel()

	t.Run("ByListenerSameLiteral", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		a, b := c.labelled("a"), c.labelled("b")

		_, err := r.Subscribe("evt", a)
		i.NoErr(err)

		_, err = r.Subscribe("evt", b)
		i.NoErr(err)

		r.Unsubscribe("evt", observer.ByListener(a))

		i.True(r.Publish("evt", nil))
		i.Equal(c.get(), []string{"b"})
	})

	t.Run("RepeatedSpaces", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		_, err := r.Subscribe("a  b", c.listener("cb", true))
		i.NoErr(err)

		i.Equal(r.Topics(), []string{"a", "b"})

		i.True(r.Publish("", nil))
		i.Equal(len(c.get()), 0)
	})

	t.Run("MultiTopicSharesIdentity", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var fired []string

		cb := func(ev observer.Event) bool {
			fired = append(fired, ev.Topic)
			return true
		}

		r := observer.New()

		s, err := r.Subscribe("x y", cb)
		i.NoErr(err)

		r.Unsubscribe("x", observer.ByListener(cb))

		i.True(r.Publish("x", nil))
		i.True(r.Publish("y", nil))
		i.Equal(fired, []string{"y"})

		r.Unsubscribe("y", observer.BySubscription(s))

		i.True(r.Publish("y", nil))
		i.Equal(fired, []string{"y"})
		i.Equal(len(r.Topics()), 0)
	})

	t.Run("BySubscriptionEverywhere", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		s, err := r.Subscribe("  a   b.c  ", c.listener("cb", true))
		i.NoErr(err)

		i.Equal(r.Topics(), []string{"a", "b.c"})

		r.Unsubscribe("a b.c", observer.BySubscription(s))

		i.True(r.Publish("a", nil))
		i.True(r.Publish("b.c", nil))
		i.Equal(len(c.get()), 0)
	})

	t.Run("ByName", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		_, err := r.Subscribe("evt", c.listener("named", true), observer.WithName("audit"))
		i.NoErr(err)

		_, err = r.Subscribe("evt", c.listener("anonymous", true))
		i.NoErr(err)

		r.Unsubscribe("evt", observer.ByName("")) //nolint:staticcheck // legacy path

		i.True(r.Publish("evt", nil))
		i.Equal(c.get(), []string{"named"})

		r.Unsubscribe("evt", observer.ByName("Audit")) //nolint:staticcheck // legacy path

		i.True(r.Publish("evt", nil))
		i.Equal(c.get(), []string{"named", "named"})

		r.Unsubscribe("evt", observer.ByName("audit")) //nolint:staticcheck // legacy path

		i.True(r.Publish("evt", nil))
		i.Equal(c.get(), []string{"named", "named"})
	})

	t.Run("All", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		var c calls

		r := observer.New()

		_, err := r.Subscribe("", c.listener("root", true))
		i.NoErr(err)

		_, err = r.Subscribe("", c.listener("root again", true))
		i.NoErr(err)

		r.Unsubscribe("", observer.All())

		i.True(r.Publish("anything", nil))
		i.Equal(len(c.get()), 0)
	})
}

func TestRegistry_Once(t *testing.T) {
	t.Parallel()

	i := is.New(t)

	var c calls

	r := observer.New()

	_, err := r.Once("a a.b", c.listener("once", true))
	i.NoErr(err)

	_, err = r.Subscribe("a", c.listener("always", true))
	i.NoErr(err)

	i.True(r.Publish("a.b", nil))
	i.True(r.Publish("a.b", nil))
	i.True(r.Publish("a", nil))

	i.Equal(c.get(), []string{"once", "always", "always", "always"})
	i.Equal(r.Topics(), []string{"a"})
	i.Equal(r.Stats().Delivered, uint64(4))
}

func TestRegistry_InvalidArgument(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		topics   string
		listener observer.Listener
	}{
		"NilListener": {
			topics:   "a",
			listener: nil,
		},
		"EmptySegment": {
			topics:   "ok a..b",
			listener: func(observer.Event) bool { return true },
		},
		"LeadingSeparator": {
			topics:   ".a",
			listener: func(observer.Event) bool { return true },
		},
		"TrailingSeparator": {
			topics:   "ok a.",
			listener: func(observer.Event) bool { return true },
		},
	}

	for name, test := range tests {
		test := test

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			i := is.New(t)

			r := observer.New()

			s, err := r.Subscribe(test.topics, test.listener)
			i.True(s == nil)
			i.True(errors.Is(err, observer.ErrInvalidArgument))
			i.True(!errors.Is(err, observer.ErrTopicNotFound))

			_, err = r.Once(test.topics, test.listener)
			i.True(errors.Is(err, observer.ErrInvalidArgument))

			// nothing was registered, not even on the valid topics.
			i.Equal(len(r.Topics()), 0)

			_, err = r.Run("ok", nil)
			i.True(errors.Is(err, observer.ErrTopicNotFound))
		})
	}

	t.Run("NilListenerSentinel", func(t *testing.T) {
		t.Parallel()

		i := is.New(t)

		_, err := observer.New().Subscribe("a", nil)
		i.True(errors.Is(err, observer.ErrNilListener))
	})
}

type cart struct {
	observer.Registry

	items []string
}

func (c *cart) add(item string) bool {
	if !c.Publish("cart.adding", item) {
		return false
	}

	c.items = append(c.items, item)

	c.Publish("cart.added", item)

	return true
}

func TestRegistry_Embedded(t *testing.T) {
	t.Parallel()

	i := is.New(t)

	c := new(cart)

	var added []any

	_, err := c.Subscribe("cart.adding", func(ev observer.Event) bool {
		return ev.Payload != "forbidden"
	})
	i.NoErr(err)

	_, err = c.Subscribe("cart.added", observer.Always(func(ev observer.Event) {
		added = append(added, ev.Payload)
	}))
	i.NoErr(err)

	i.True(c.add("apple"))
	i.True(!c.add("forbidden"))
	i.True(c.add("pear"))

	i.Equal(c.items, []string{"apple", "pear"})
	i.Equal(added, []any{"apple", "pear"})
	i.Equal(c.Stats().Halted, uint64(1))
}

func TestRegistry_Concurrency(t *testing.T) {
	t.Parallel()

	i := is.New(t)

	const (
		workers = 8
		rounds  = 100
	)

	r := observer.New()

	var (
		mu    sync.Mutex
		count int
	)

	_, err := r.Subscribe("", observer.Always(func(observer.Event) {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	i.NoErr(err)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for n := 0; n < rounds; n++ {
				s, err := r.Subscribe("load.test", observer.Always(func(observer.Event) {}))
				if err != nil {
					t.Error(err)
					return
				}

				r.Publish("load.test", n)
				r.Unsubscribe("load.test", observer.BySubscription(s))
			}
		}()
	}

	wg.Wait()

	i.Equal(count, workers*rounds)
	i.Equal(r.Stats().Published, uint64(workers*rounds))
	i.Equal(r.Topics(), []string{""})
}
