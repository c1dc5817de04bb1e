package engine

// noteTracker maintains the physical (currently depressed) and active
// (feeding the lanes) note sets across hold and latch play modes.
//
// In hold mode the active set mirrors the physical set on every event. In
// latch mode the active set persists after all keys release; the next
// note-on after a full release replaces it.
type noteTracker struct {
	mode PlayMode

	physical         []uint8 // pitch ascending, deduped
	physicalAsPlayed []uint8 // insertion order, deduped
	active           []uint8
	activeAsPlayed   []uint8

	latchReadyReplace bool
}

func newNoteTracker() noteTracker {
	return noteTracker{
		physical:         make([]uint8, 0, MaxHeldNotes),
		physicalAsPlayed: make([]uint8, 0, MaxHeldNotes),
		active:           make([]uint8, 0, MaxHeldNotes),
		activeAsPlayed:   make([]uint8, 0, MaxHeldNotes),
	}
}

func notesContain(notes []uint8, note uint8) bool {
	for _, n := range notes {
		if n == note {
			return true
		}
	}
	return false
}

// addSorted inserts note keeping pitch order, ignoring duplicates and
// overflow beyond MaxHeldNotes
func addSorted(notes []uint8, note uint8) []uint8 {
	if len(notes) >= MaxHeldNotes {
		return notes
	}
	i := 0
	for ; i < len(notes); i++ {
		if notes[i] == note {
			return notes
		}
		if notes[i] > note {
			break
		}
	}
	notes = append(notes, 0)
	copy(notes[i+1:], notes[i:])
	notes[i] = note
	return notes
}

// addTail appends note in arrival order, ignoring duplicates and overflow
func addTail(notes []uint8, note uint8) []uint8 {
	if len(notes) >= MaxHeldNotes || notesContain(notes, note) {
		return notes
	}
	return append(notes, note)
}

func removeNote(notes []uint8, note uint8) []uint8 {
	for i, n := range notes {
		if n == note {
			return append(notes[:i], notes[i+1:]...)
		}
	}
	return notes
}

func (t *noteTracker) clearActive() {
	t.active = t.active[:0]
	t.activeAsPlayed = t.activeAsPlayed[:0]
}

// syncActiveToPhysical makes the active sets mirror the physical sets
func (t *noteTracker) syncActiveToPhysical() {
	t.clearActive()
	for _, n := range t.physical {
		t.active = addSorted(t.active, n)
	}
	for _, n := range t.physicalAsPlayed {
		if notesContain(t.active, n) {
			t.activeAsPlayed = addTail(t.activeAsPlayed, n)
		}
	}
}

// setMode switches hold/latch and immediately re-syncs the active set
func (t *noteTracker) setMode(mode PlayMode) {
	if t.mode == mode {
		return
	}
	t.mode = mode
	if mode == PlayHold {
		t.latchReadyReplace = false
		t.syncActiveToPhysical()
		return
	}
	if len(t.physical) > 0 {
		t.syncActiveToPhysical()
		t.latchReadyReplace = false
	} else {
		t.latchReadyReplace = true
	}
}

// noteOn records a key press. Returns true when a latched set was replaced
// by this press (the latch "ready-to-replace" rule fired).
func (t *noteTracker) noteOn(note uint8) bool {
	replaced := t.mode == PlayLatch && t.latchReadyReplace
	t.physical = addSorted(t.physical, note)
	t.physicalAsPlayed = addTail(t.physicalAsPlayed, note)
	if t.mode == PlayLatch {
		if t.latchReadyReplace {
			t.clearActive()
			t.latchReadyReplace = false
		}
		t.active = addSorted(t.active, note)
		t.activeAsPlayed = addTail(t.activeAsPlayed, note)
	} else {
		t.syncActiveToPhysical()
	}
	return replaced
}

// noteOff records a key release. In latch mode the active set is kept; the
// full release only arms ready-to-replace.
func (t *noteTracker) noteOff(note uint8) {
	t.physical = removeNote(t.physical, note)
	t.physicalAsPlayed = removeNote(t.physicalAsPlayed, note)
	if t.mode == PlayLatch {
		if len(t.physical) == 0 {
			t.latchReadyReplace = true
		}
	} else {
		t.syncActiveToPhysical()
	}
}

// stop clears everything and re-arms the latch
func (t *noteTracker) stop() {
	t.physical = t.physical[:0]
	t.physicalAsPlayed = t.physicalAsPlayed[:0]
	t.clearActive()
	t.latchReadyReplace = t.mode == PlayLatch
}

func (t *noteTracker) activeCount() int {
	return len(t.active)
}

// hash identifies the current active set for deterministic reshuffling
func (t *noteTracker) hash() uint32 {
	return noteSetHash(t.active)
}
