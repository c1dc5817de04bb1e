package engine

import "eucalypso/midi"

// voice is one sounding note with a remaining-duration countdown. The unit
// is whatever the active transport counts in: clock ticks under external
// sync, sample frames under internal sync.
type voice struct {
	note      uint8
	remaining int
}

// voicePool schedules and expires sounding notes, enforcing the polyphony
// limit and the no-duplicate-pitch rule
type voicePool struct {
	voices []voice
}

func newVoicePool() voicePool {
	return voicePool{voices: make([]voice, 0, MaxVoices)}
}

func (p *voicePool) count() int {
	return len(p.voices)
}

func (p *voicePool) notes() []uint8 {
	out := make([]uint8, len(p.voices))
	for i, v := range p.voices {
		out[i] = v.note
	}
	return out
}

// releaseAt emits a note-off for voice i and removes it. Fails (and keeps
// the voice) when the output buffer is full.
func (p *voicePool) releaseAt(i int, out *midi.Buffer) bool {
	if i < 0 || i >= len(p.voices) {
		return false
	}
	if !out.Append(midi.NewNoteOff(p.voices[i].note)) {
		return false
	}
	p.voices = append(p.voices[:i], p.voices[i+1:]...)
	return true
}

// flush releases every open voice, oldest first
func (p *voicePool) flush(out *midi.Buffer) int {
	released := 0
	for len(p.voices) > 0 {
		if !p.releaseAt(0, out) {
			break
		}
		released++
	}
	return released
}

// kill releases any voice sounding the given pitch
func (p *voicePool) kill(note uint8, out *midi.Buffer) int {
	killed := 0
	i := 0
	for i < len(p.voices) {
		if p.voices[i].note == note {
			if !p.releaseAt(i, out) {
				break
			}
			killed++
		} else {
			i++
		}
	}
	return killed
}

// rescale converts open gate countdowns from one transport's step length
// to another's when the sync source changes, so a frame-denominated gate
// never ages in clock ticks (or vice versa). When either step length is
// unknown the countdown collapses to one unit and the stale voice releases
// on the next advance.
func (p *voicePool) rescale(oldStep, newStep int) {
	for i := range p.voices {
		if oldStep > 0 && newStep > 0 {
			r := p.voices[i].remaining * newStep / oldStep
			if r < 1 {
				r = 1
			}
			p.voices[i].remaining = r
		} else {
			p.voices[i].remaining = 1
		}
	}
}

// advance ages every voice by delta units and releases the expired ones
func (p *voicePool) advance(delta int, out *midi.Buffer) int {
	released := 0
	i := 0
	for i < len(p.voices) {
		if p.voices[i].remaining > 0 {
			p.voices[i].remaining -= delta
		}
		if p.voices[i].remaining <= 0 {
			if !p.releaseAt(i, out) {
				break
			}
			released++
		} else {
			i++
		}
	}
	return released
}

// schedule emits a note-on and opens a voice for it. Any voice already
// sounding the pitch is released first, then the oldest voices are evicted
// down to the polyphony limit. gatePct of zero emits the note-off in the
// same call and opens no voice. Buffer space is checked before the voice
// commits, so a truncated emission never leaves a half-opened voice.
func (p *voicePool) schedule(note uint8, velocity, gatePct, limit int, clock stepClock, out *midi.Buffer) bool {
	velocity = clamp(velocity, 1, 127)
	gatePct = clamp(gatePct, 0, 1600)
	limit = clamp(limit, 1, MaxVoices)

	p.kill(note, out)
	for len(p.voices) >= limit {
		if !p.releaseAt(0, out) {
			return false
		}
	}

	needed := 1
	if gatePct <= 0 {
		needed = 2
	}
	if out.Room() < needed {
		return false
	}
	out.Append(midi.NewNoteOn(note, uint8(velocity)))
	if gatePct <= 0 {
		out.Append(midi.NewNoteOff(note))
		return true
	}
	p.voices = append(p.voices, voice{note: note, remaining: clock.gateLength(gatePct)})
	return true
}
