package observer

import "go.uber.org/atomic"

// Stats is a point in time copy of the counters of a Registry.
type Stats struct {
	// Published counts Publish and Run calls.
	Published uint64
	// Halted counts dispatches stopped by a listener returning false.
	Halted uint64
	// Delivered counts listener invocations.
	Delivered uint64
	// Recovered counts listener panics handed to the panic handler.
	Recovered uint64
	// NotFound counts Run calls for topics without a node.
	NotFound uint64
}

type counters struct {
	published atomic.Uint64
	halted    atomic.Uint64
	delivered atomic.Uint64
	recovered atomic.Uint64
	notFound  atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Published: c.published.Load(),
		Halted:    c.halted.Load(),
		Delivered: c.delivered.Load(),
		Recovered: c.recovered.Load(),
		NotFound:  c.notFound.Load(),
	}
}
