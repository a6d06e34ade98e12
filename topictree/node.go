package topictree

import (
	"sort"
	"sync"

	"go.uber.org/atomic"
)

// Result reports how a node or a dispatch ended.
type Result int

// Available results.
const (
	// Continued means every listener ran and none returned false.
	Continued Result = iota
	// Halted means a listener returned false.
	Halted
)

func (r Result) String() string {
	if r == Halted {
		return "halted"
	}

	return "continued"
}

// Node is a topic in the tree. It holds the listeners subscribed to exactly
// this topic and the child topics one segment deeper.
//
// The zero value is an empty root node.
type Node struct {
	// listeners is never mutated in place, writers swap in a new slice.
	listeners atomic.Pointer[[]*Subscription]
	// serializes writers of listeners.
	writeMu sync.Mutex

	mu       sync.RWMutex
	children map[string]*Node
}

// NewNode returns an empty node.
func NewNode() *Node {
	return &Node{}
}

// Listeners returns the current listener sequence. The slice must not be
// modified.
func (n *Node) Listeners() []*Subscription {
	if p := n.listeners.Load(); p != nil {
		return *p
	}

	return nil
}

// Len returns the number of listeners of n.
func (n *Node) Len() int {
	return len(n.Listeners())
}

// Insert adds s after every listener with a priority lower than or equal to
// its own.
func (n *Node) Insert(s *Subscription) {
	n.writeMu.Lock()
	defer n.writeMu.Unlock()

	old := n.Listeners()

	idx := sort.Search(len(old), func(i int) bool {
		return old[i].priority > s.priority
	})

	listeners := make([]*Subscription, 0, len(old)+1)
	listeners = append(listeners, old[:idx]...)
	listeners = append(listeners, s)
	listeners = append(listeners, old[idx:]...)

	n.listeners.Store(&listeners)

	s.track(n)
}

// Remove drops every listener selected by m and returns how many were
// dropped. A nil m drops all listeners.
func (n *Node) Remove(m Matcher) int {
	if m == nil {
		m = All()
	}

	n.writeMu.Lock()
	defer n.writeMu.Unlock()

	old := n.Listeners()

	listeners := make([]*Subscription, 0, len(old))

	for _, s := range old {
		if !m.Match(s) {
			listeners = append(listeners, s)
		}
	}

	removed := len(old) - len(listeners)
	if removed == 0 {
		return 0
	}

	n.listeners.Store(&listeners)

	return removed
}

// Invoke fires the listeners of n, and only those, in priority order.
func (n *Node) Invoke(ev Event) Result {
	return Dispatcher{}.fire(n.Listeners(), ev).Result
}

// Child returns the child node for segment.
func (n *Node) Child(segment string) (*Node, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	child, ok := n.children[segment]

	return child, ok
}

// ensureChild returns the child node for segment, creating it if needed.
func (n *Node) ensureChild(segment string) *Node {
	if child, ok := n.Child(segment); ok {
		return child
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if child, ok := n.children[segment]; ok {
		return child
	}

	if n.children == nil {
		n.children = make(map[string]*Node)
	}

	child := NewNode()
	n.children[segment] = child

	return child
}

// Segments returns the sorted names of the children of n.
func (n *Node) Segments() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	segments := make([]string, 0, len(n.children))
	for seg := range n.children {
		segments = append(segments, seg)
	}

	sort.Strings(segments)

	return segments
}
