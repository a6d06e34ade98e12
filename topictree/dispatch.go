package topictree

// Outcome describes a finished dispatch.
type Outcome struct {
	Result Result

	// HaltedBy is the subscription that returned false, nil when Result is
	// Continued.
	HaltedBy *Subscription

	// Fired counts the listeners that ran, including the one that halted
	// and those that panicked. Once subscriptions that already fired are
	// not counted.
	Fired int

	// Recovered counts the listeners whose panic was recovered.
	Recovered int
}

func (o *Outcome) add(other Outcome) {
	o.Result = other.Result
	o.HaltedBy = other.HaltedBy
	o.Fired += other.Fired
	o.Recovered += other.Recovered
}

// RecoverFunc receives the value of a recovered listener panic.
type RecoverFunc func(ev Event, s *Subscription, recovered any)

// Dispatcher fires listeners. The zero value lets listener panics propagate
// to the caller.
type Dispatcher struct {
	// Recover, when set, recovers listener panics and is handed the panic
	// value. A listener that panicked does not stop the dispatch.
	Recover RecoverFunc
}

// Dispatch is Dispatcher{}.Dispatch.
func Dispatch(root *Node, ev Event) Outcome {
	return Dispatcher{}.Dispatch(root, ev)
}

// Direct is Dispatcher{}.Direct.
func Direct(root *Node, ev Event) (Outcome, bool) {
	return Dispatcher{}.Direct(root, ev)
}

// Dispatch fires the listeners of ev.Topic and of each of its ancestors,
// deepest node first, ending with root. The listener sequences of the whole
// chain are loaded before the first listener runs.
func (d Dispatcher) Dispatch(root *Node, ev Event) Outcome {
	chain := Resolve(root, ev.Topic)

	snapshots := make([][]*Subscription, len(chain))
	for i, node := range chain {
		snapshots[i] = node.Listeners()
	}

	var out Outcome

	for i := len(snapshots) - 1; i >= 0; i-- {
		out.add(d.fire(snapshots[i], ev))

		if out.Result == Halted {
			break
		}
	}

	return out
}

// Direct fires the listeners of the exact node of ev.Topic, without bubbling
// to its ancestors. It returns false when no node exists for the topic.
func (d Dispatcher) Direct(root *Node, ev Event) (Outcome, bool) {
	node, ok := Find(root, ev.Topic)
	if !ok {
		return Outcome{}, false
	}

	return d.fire(node.Listeners(), ev), true
}

// fire triggers listeners in order until one of them returns false.
func (d Dispatcher) fire(listeners []*Subscription, ev Event) Outcome {
	var out Outcome

	for _, s := range listeners {
		ok, ran, recovered := d.trigger(s, ev)

		if ran {
			out.Fired++
		}

		if recovered {
			out.Recovered++
		}

		if !ok {
			out.Result = Halted
			out.HaltedBy = s

			return out
		}
	}

	return out
}

func (d Dispatcher) trigger(s *Subscription, ev Event) (ok, ran, recovered bool) {
	if d.Recover != nil {
		defer func() {
			if v := recover(); v != nil {
				d.Recover(ev, s, v)

				ok, ran, recovered = true, true, true
			}
		}()
	}

	ok, ran = s.Trigger(ev)

	return ok, ran, false
}

// Resolve returns the chain of existing nodes along topic, root first. It
// stops at the first segment without a node, so the chain may be shorter than
// the topic. No node is created.
func Resolve(root *Node, topic string) []*Node {
	segments := Split(topic)

	chain := make([]*Node, 1, len(segments)+1)
	chain[0] = root

	node := root

	for _, seg := range segments {
		child, ok := node.Child(seg)
		if !ok {
			break
		}

		node = child
		chain = append(chain, node)
	}

	return chain
}

// Find returns the node of topic without creating it.
func Find(root *Node, topic string) (*Node, bool) {
	node := root

	for _, seg := range Split(topic) {
		child, ok := node.Child(seg)
		if !ok {
			return nil, false
		}

		node = child
	}

	return node, true
}

// Descend returns the node of topic, creating the missing nodes on the way.
func Descend(root *Node, topic string) *Node {
	node := root

	for _, seg := range Split(topic) {
		node = node.ensureChild(seg)
	}

	return node
}

// Walk calls fn for root and every descendant, parents before children and
// siblings in segment order, passing the topic of each node. Walk stops when
// fn returns false.
func Walk(root *Node, fn func(topic string, n *Node) bool) {
	walk(root, "", fn)
}

func walk(n *Node, topic string, fn func(string, *Node) bool) bool {
	if !fn(topic, n) {
		return false
	}

	for _, seg := range n.Segments() {
		child, ok := n.Child(seg)
		if !ok {
			continue
		}

		childTopic := seg
		if topic != "" {
			childTopic = Join(topic, seg)
		}

		if !walk(child, childTopic, fn) {
			return false
		}
	}

	return true
}
