package engine

// The register is the ordered pool of candidate pitches lanes index into.
// It is rebuilt from scratch for every lookup, so lane logic never observes
// a stale pool.

// buildRegister fills dst with the current note pool and returns its length
func (e *Engine) buildRegister(dst []int) int {
	if e.registerMode == RegisterScale {
		return e.buildScaleRegister(dst)
	}
	return e.buildHeldRegister(dst)
}

// buildScaleRegister walks the scale's interval table upward from
// base+root, octave-repeating until scaleRange notes are collected
func (e *Engine) buildScaleRegister(dst []int) int {
	intervals := e.scaleMode.intervals()
	count := clamp(e.scaleRange, 1, MaxRegisterNotes)
	if count > len(dst) {
		count = len(dst)
	}
	base := scaleBaseNote + clamp(e.rootNote, 0, 11)
	for i := 0; i < count; i++ {
		degree := i % len(intervals)
		oct := i / len(intervals)
		dst[i] = clamp(base+intervals[degree]+oct*12, 0, 127)
	}
	return count
}

// buildHeldRegister orders the active note set by the configured held order
func (e *Engine) buildHeldRegister(dst []int) int {
	active := e.notes.active
	count := len(active)
	if count > len(dst) {
		count = len(dst)
	}
	if count <= 0 {
		return 0
	}

	if e.heldOrder == HeldPlayed && len(e.notes.activeAsPlayed) > 0 {
		out := 0
		for _, n := range e.notes.activeAsPlayed {
			if out >= count {
				break
			}
			if notesContain(active, n) {
				dst[out] = int(n)
				out++
			}
		}
		return out
	}

	if e.heldOrder == HeldDown {
		for i := 0; i < count; i++ {
			dst[i] = int(active[count-1-i])
		}
		return count
	}

	for i := 0; i < count; i++ {
		dst[i] = int(active[i])
	}
	if e.heldOrder == HeldRand {
		shuffleNotes(dst[:count], uint32(e.heldOrderSeed)^e.notes.hash())
	}
	return count
}

// shuffleNotes is a Fisher-Yates shuffle driven by a seeded draw stream, so
// the same seed and note set always produce the same order
func shuffleNotes(notes []int, seed uint32) {
	state := seed
	if state == 0 {
		state = 1
	}
	for i := len(notes) - 1; i > 0; i-- {
		j := int(next32(&state) % uint32(i+1))
		notes[i], notes[j] = notes[j], notes[i]
	}
}
