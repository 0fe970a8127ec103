package layout

import "fmt"

// Event names a lifecycle notification.
type Event string

// Lifecycle events.
const (
	EventStart Event = "start"
	EventTick  Event = "tick"
	EventEnd   Event = "end"
)

// ParseEvent converts an event name to an Event.
func ParseEvent(s string) (Event, error) {
	switch e := Event(s); e {
	case EventStart, EventTick, EventEnd:
		return e, nil
	}
	return "", fmt.Errorf("unknown event %q", s)
}

// Handler receives a snapshot of the engine's nodes and reduced edges.
// Handlers run on the engine's goroutine, inside Start.
type Handler func(nodes []*Node, edges []EdgeRef)

// Dispatcher is a per-engine listener registry. The zero value is ready to
// use. It is not safe for concurrent use; engines serialize access.
type Dispatcher struct {
	handlers map[Event][]Handler
}

// On appends h to the listeners for e. A nil handler is ignored.
func (d *Dispatcher) On(e Event, h Handler) {
	if h == nil {
		return
	}
	if d.handlers == nil {
		d.handlers = make(map[Event][]Handler)
	}
	d.handlers[e] = append(d.handlers[e], h)
}

// Off removes every listener for e.
func (d *Dispatcher) Off(e Event) {
	delete(d.handlers, e)
}

// Len returns the number of listeners for e.
func (d *Dispatcher) Len(e Event) int {
	return len(d.handlers[e])
}

// Dispatch calls the listeners for e in registration order.
func (d *Dispatcher) Dispatch(e Event, nodes []*Node, edges []EdgeRef) {
	for _, h := range d.handlers[e] {
		h(nodes, edges)
	}
}
