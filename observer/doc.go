// Package observer provides an in-process publish/subscribe registry built on
// hierarchical, dot-delimited topics.
//
// Listeners subscribe to one or more topics. Publishing a topic fires the
// listeners of that topic first and then bubbles up through its ancestors to
// the root, so a listener on "orders" hears "orders.created" as well:
//
//	r := observer.New()
//
//	_, _ = r.Subscribe("orders", observer.Always(func(ev observer.Event) {
//		fmt.Println("order event:", ev.Topic)
//	}))
//
//	r.Publish("orders.created", order)
//
// A listener returning false stops the dispatch and makes Publish return
// false. Run fires a single topic without bubbling.
//
// Dispatch is synchronous and happens on the publishing goroutine. Listeners
// may subscribe, unsubscribe and publish from inside a dispatch; those changes
// apply to later dispatches only.
//
// The zero value of Registry is ready to use, which lets a host type embed it
// and expose Subscribe, Publish and the other methods as its own.
package observer
