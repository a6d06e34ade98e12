// Package topictree implements the subscription tree behind the observer
// registry.
//
// # Topics
//
// Topics are dot-delimited paths such as "orders.created.eu". Every segment
// owns a Node in a prefix tree whose root represents the empty topic "".
// Nodes are created lazily the first time something subscribes through them
// and are never pruned.
//
// # Ordering
//
// Listeners registered at the same node fire by ascending priority; listeners
// sharing a priority fire in registration order. Publishing "a.b.c" fires the
// listeners of "a.b.c", then "a.b", then "a", then the root. Priority never
// reorders listeners across nodes.
//
// # Short-circuit
//
// A listener returning false stops the dispatch: no further listener runs, at
// the same node or at any ancestor.
//
// # Mutation during dispatch
//
// Listener sequences are immutable slices replaced on every Insert or Remove.
// A dispatch works on the slices it loaded when it started, so listeners that
// subscribe or unsubscribe while it runs only affect later dispatches.
package topictree
