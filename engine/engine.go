package engine

import "eucalypso/midi"

// Engine is one instance of the sequencing core. The host drives it
// synchronously: once per incoming MIDI message via ProcessMIDI and once
// per audio block via Tick. Neither call blocks and all mutation completes
// before return; the engine is not safe for concurrent use.
type Engine struct {
	// Global configuration (clamped at assignment by the param surface)
	playMode      PlayMode
	retrigger     RetriggerMode
	rate          Rate
	sync          SyncMode
	bpm           int
	swing         int
	maxVoices     int
	velocity      int
	velocityRnd   int
	gate          int
	gateRnd       int
	rndSeed       int
	randCycle     int
	registerMode  RegisterMode
	heldOrder     HeldOrder
	heldOrderSeed int
	scaleMode     ScaleMode
	scaleRange    int
	rootNote      int
	octave        int
	missingPolicy MissingNotePolicy
	missingSeed   int
	lanes         [MaxLanes]Lane

	notes    noteTracker
	internal internalClock
	clock    midiClock
	voices   voicePool

	// running covers the internal transport; external sync tracks its own
	// running flag on the midi clock
	running bool

	anchorStep           uint64
	phraseAnchorStep     uint64
	phraseRestartPending bool

	logf func(format string, args ...any)
}

// New creates an engine with factory defaults: internal sync at 120 bpm,
// 1/16 rate, hold mode, one enabled lane of 16 steps / 4 pulses
func New() *Engine {
	e := &Engine{
		playMode:     PlayHold,
		retrigger:    RetrigCont,
		rate:         Rate1_16,
		sync:         SyncInternal,
		bpm:          defaultBPM,
		maxVoices:    8,
		velocity:     100,
		gate:         100,
		randCycle:    16,
		registerMode: RegisterHeld,
		heldOrder:    HeldUp,
		scaleMode:    ScaleMajor,
		scaleRange:   8,
		notes:        newNoteTracker(),
		voices:       newVoicePool(),
		running:      true,
	}
	for i := range e.lanes {
		e.lanes[i] = Lane{
			Enabled:  i == 0,
			Steps:    16,
			Pulses:   4,
			Note:     i + 1,
			OctRange: 2, // "+-1"
		}
	}
	e.internal.intervalF = 1.0
	e.internal.untilStepF = 1.0
	e.internal.dirty = true
	e.clock.recalc(e.rate)
	e.clock.running = true
	return e
}

// SetLogger installs an optional printf-style debug sink
func (e *Engine) SetLogger(logf func(format string, args ...any)) {
	e.logf = logf
}

func (e *Engine) log(format string, args ...any) {
	if e.logf != nil {
		e.logf(format, args...)
	}
}

// activeClock returns the gate-length converter for the current sync mode
func (e *Engine) activeClock() stepClock {
	if e.sync == SyncClock {
		return &e.clock
	}
	return &e.internal
}

// stepUnits returns one full step in the active transport's gate units
// (clock ticks or sample frames), or 0 when the internal interval is not
// yet known
func (e *Engine) stepUnits() int {
	if e.sync == SyncClock {
		return e.clock.clocksPerStep
	}
	if e.internal.dirty || e.internal.sampleRate <= 0 {
		return 0
	}
	return int(e.internal.intervalF + 0.5)
}

// rhythmStep maps an anchor step onto the lane phase origin. Under restart
// retriggering the phrase anchor is subtracted so lane phase restarts with
// each new note set.
func (e *Engine) rhythmStep(anchorStep uint64) uint64 {
	if e.retrigger == RetrigRestart {
		if anchorStep >= e.phraseAnchorStep {
			return anchorStep - e.phraseAnchorStep
		}
		return 0
	}
	return anchorStep
}

// runAnchorStep fires one anchor step: snaps the phrase anchor if a
// restart is armed, evaluates the lanes, then advances the counter
func (e *Engine) runAnchorStep(out *midi.Buffer) {
	stepID := e.anchorStep
	if e.phraseRestartPending && e.notes.activeCount() > 0 {
		e.phraseAnchorStep = stepID
		e.phraseRestartPending = false
		e.log("phrase restart step=%d", stepID)
	}
	e.emitAnchorStep(stepID, out)
	e.anchorStep++
}

// emitAnchorStep evaluates the four lanes in fixed index order for one step
func (e *Engine) emitAnchorStep(stepID uint64, out *midi.Buffer) {
	if e.notes.activeCount() <= 0 {
		return
	}
	rhythm := e.rhythmStep(stepID)
	for i := range e.lanes {
		if out.Room() <= 0 {
			return
		}
		lane := &e.lanes[i]
		if !lane.Enabled {
			continue
		}
		if !EuclidHit(rhythm, clamp(lane.Steps, 1, 128), clamp(lane.Pulses, 0, 128), lane.Rotation) {
			continue
		}
		if e.shouldDrop(lane, i, rhythm) {
			e.log("lane=%d dropped step=%d", i+1, rhythm)
			continue
		}
		note := e.selectNote(lane, i, rhythm)
		if note < 0 {
			continue
		}
		e.log("lane=%d note=%d step=%d rhythm=%d", i+1, note, stepID, rhythm)
		e.voices.schedule(uint8(note), e.noteVelocity(lane, i, rhythm),
			e.noteGate(lane, i, rhythm), e.maxVoices, e.activeClock(), out)
	}
}

// handleStart resets the transport for a downbeat-first run
func (e *Engine) handleStart(resume bool) {
	if e.sync == SyncClock {
		if resume {
			// Continue resumes the external clock without resetting phase
			e.clock.running = true
			return
		}
		e.clock.start()
	} else {
		if e.internal.dirty || e.internal.sampleRate <= 0 {
			sr := e.internal.sampleRate
			if sr <= 0 {
				sr = defaultSampleRate
			}
			e.internal.recalc(sr, e.bpm, e.rate)
		}
		e.running = true
		e.internal.reset()
	}
	e.anchorStep = 0
	e.phraseAnchorStep = 0
	e.phraseRestartPending = e.retrigger == RetrigRestart
	e.log("transport start sync=%s", e.sync)
}

// handleStop flushes everything and returns the transport to Stopped. The
// CC123 "all notes off" goes out first, then the per-voice note-offs. The
// internal transport stays parked until the next Start/Continue.
func (e *Engine) handleStop(out *midi.Buffer) {
	out.Append(midi.NewAllNotesOff())
	e.voices.flush(out)
	e.clock.stop()
	e.internal.stop()
	e.anchorStep = 0
	e.phraseAnchorStep = 0
	e.phraseRestartPending = false
	e.running = false
	e.notes.stop()
	e.log("transport stop")
}

// ProcessMIDI consumes one raw MIDI message and appends any resulting
// output to out. Unrecognized messages pass through unchanged.
func (e *Engine) ProcessMIDI(msg []byte, out *midi.Buffer) {
	if len(msg) < 1 {
		return
	}
	status := msg[0]

	switch status {
	case midi.Start:
		e.handleStart(false)
		return
	case midi.Continue:
		e.handleStart(true)
		return
	case midi.Stop:
		e.handleStop(out)
		return
	case midi.Clock:
		if e.sync != SyncClock {
			out.Append(midi.Raw(msg))
			return
		}
		if !e.clock.running {
			return
		}
		// Voices age one tick per clock byte, then the step boundary is
		// checked; triggers queue until the host's next Tick drains them.
		e.voices.advance(1, out)
		if e.clock.tick() {
			e.log("clock boundary tick=%d pending=%d", e.clock.tickTotal, e.clock.pending)
		}
		return
	}

	kind := status & 0xF0
	if (kind == midi.NoteOn || kind == midi.NoteOff) && len(msg) >= 3 {
		note, vel := msg[1], msg[2]
		if kind == midi.NoteOn && vel > 0 {
			e.handleNoteOn(note)
		} else {
			e.handleNoteOff(note, out)
		}
		return
	}

	out.Append(midi.Raw(msg))
}

func (e *Engine) handleNoteOn(note uint8) {
	liveBefore := e.notes.activeCount()
	replacedLatch := e.notes.noteOn(note)
	if replacedLatch && e.retrigger == RetrigRestart && e.notes.activeCount() > 0 {
		e.phraseRestartPending = true
		e.log("phrase restart armed latch-replace anchor=%d", e.anchorStep)
	}
	if liveBefore == 0 && e.notes.activeCount() > 0 && e.retrigger == RetrigRestart {
		e.phraseRestartPending = true
		e.log("phrase restart armed anchor=%d", e.anchorStep)
	}
}

func (e *Engine) handleNoteOff(note uint8, out *midi.Buffer) {
	e.notes.noteOff(note)
	// Under internal sync with restart retriggering, losing the last
	// active note silences the open voices right away.
	if e.sync == SyncInternal && e.retrigger == RetrigRestart && e.notes.activeCount() == 0 {
		e.voices.flush(out)
	}
}

// Tick advances the engine by one audio block. Under internal sync it
// drives the sample countdown and fires due anchor steps; under external
// sync it drains the pending step triggers queued by clock bytes. Voice
// gate countdowns age here in internal mode (frames) and on clock bytes in
// external mode (ticks).
func (e *Engine) Tick(frames, sampleRate int, out *midi.Buffer) {
	if frames < 0 {
		return
	}
	if e.internal.dirty || e.internal.sampleRate != sampleRate {
		e.internal.recalc(sampleRate, e.bpm, e.rate)
	}

	if e.sync == SyncInternal {
		e.voices.advance(frames, out)
		if out.Room() <= 0 || !e.running {
			return
		}
		e.internal.sampleTotal += uint64(frames)
		e.internal.untilStepF -= float64(frames)
		for e.internal.untilStepF <= 0 && out.Room() > 0 {
			e.runAnchorStep(out)
			e.internal.untilStepF += e.internal.nextInterval(e.swing, e.rate)
			if e.internal.untilStepF < 1.0 {
				e.internal.untilStepF = 1.0
			}
		}
		return
	}

	for e.clock.pending > 0 && out.Room() > 0 {
		e.runAnchorStep(out)
		e.clock.pending--
	}
}
