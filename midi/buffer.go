package midi

// Buffer collects events emitted during one host call, bounded by a
// caller-supplied capacity. Callers check Append's result (or Room) before
// committing state that depends on the event actually going out.
type Buffer struct {
	events []Event
	max    int
}

// NewBuffer creates a buffer that accepts at most max events
func NewBuffer(max int) *Buffer {
	if max < 0 {
		max = 0
	}
	return &Buffer{events: make([]Event, 0, max), max: max}
}

// Append adds an event if there is room. Returns false when the buffer is
// full; the event is dropped.
func (b *Buffer) Append(e Event) bool {
	if len(b.events) >= b.max {
		return false
	}
	b.events = append(b.events, e)
	return true
}

// Room returns how many more events the buffer accepts
func (b *Buffer) Room() int {
	return b.max - len(b.events)
}

// Len returns the number of collected events
func (b *Buffer) Len() int {
	return len(b.events)
}

// Events returns the collected events in emission order
func (b *Buffer) Events() []Event {
	return b.events
}

// Reset empties the buffer, keeping its capacity
func (b *Buffer) Reset() {
	b.events = b.events[:0]
}
