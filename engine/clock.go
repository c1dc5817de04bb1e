package engine

// Two transport drives exist: an internal sample-accurate timer and an
// external 24-ppqn MIDI clock. Both fire anchor steps; gate durations for
// new voices are expressed in the active drive's unit (sample frames or
// clock ticks) through the stepClock seam, so voice logic is written once.

// stepClock converts a gate percentage into the active transport's
// duration unit
type stepClock interface {
	gateLength(gatePct int) int
}

// internalClock is the sample-driven transport. A floating countdown
// crosses zero once per step; swing alternates the interval length.
type internalClock struct {
	sampleRate  int
	intervalF   float64 // base step interval in samples
	untilStepF  float64 // countdown to the next step
	sampleTotal uint64  // frames elapsed since transport start
	swingPhase  int
	dirty       bool // timing params changed, recalc before next use
}

// recalc derives the step interval from bpm, rate and sample rate
func (c *internalClock) recalc(sampleRate, bpm int, rate Rate) {
	if sampleRate <= 0 {
		return
	}
	npb := rate.notesPerBeat()
	if npb <= 0 {
		npb = 4.0
	}
	interval := float64(sampleRate) * 60.0 / (float64(clamp(bpm, 40, 240)) * npb)
	if interval < 1.0 {
		interval = 1.0
	}
	c.sampleRate = sampleRate
	c.intervalF = interval
	if c.untilStepF <= 0 || c.untilStepF > c.intervalF {
		c.untilStepF = c.intervalF
	}
	c.dirty = false
}

// realign recomputes the countdown from total elapsed frames so a bpm or
// rate change does not jump the phase discontinuously
func (c *internalClock) realign() {
	interval := c.intervalF
	if interval <= 0 {
		interval = 1.0
	}
	rem := float64(c.sampleTotal)
	for rem >= interval {
		rem -= interval
	}
	for rem < 0 {
		rem += interval
	}
	until := interval - rem
	if rem < 1e-9 {
		until = interval
	}
	if until < 1.0 {
		until = 1.0
	}
	c.untilStepF = until
	c.swingPhase = 0
}

// nextInterval returns the length of the upcoming step, applying swing.
// Triplet rates ignore swing.
func (c *internalClock) nextInterval(swing int, rate Rate) float64 {
	base := c.intervalF
	if base <= 0 {
		base = 1.0
	}
	swing = clamp(swing, 0, 100)
	if swing <= 0 || rate.isTriplet() {
		return base
	}
	delta := base * float64(swing) / 200.0
	if c.swingPhase == 0 {
		c.swingPhase = 1
		return base + delta
	}
	c.swingPhase = 0
	if base-delta < 1.0 {
		return 1.0
	}
	return base - delta
}

func (c *internalClock) gateLength(gatePct int) int {
	samples := int(c.intervalF+0.5) * clamp(gatePct, 0, 1600) / 100
	if samples < 1 {
		samples = 1
	}
	return samples
}

// reset re-arms the countdown for an immediate first step
func (c *internalClock) reset() {
	c.sampleTotal = 0
	c.untilStepF = 0
	c.swingPhase = 0
}

// stop returns the countdown to a full idle interval
func (c *internalClock) stop() {
	c.sampleTotal = 0
	c.swingPhase = 0
	if c.intervalF > 0 {
		c.untilStepF = c.intervalF
	} else {
		c.untilStepF = 1.0
	}
}

// midiClock is the tick-driven transport. Each 0xF8 byte advances the tick
// counter; every clocksPerStep ticks one pending anchor-step trigger is
// queued for the host to drain on its next processing call.
type midiClock struct {
	clocksPerStep int
	tickTotal     uint64
	counter       int // tick phase within the current step
	running       bool
	pending       int
}

// recalc derives ticks-per-step from the rate (24 ppqn base)
func (c *midiClock) recalc(rate Rate) {
	npb := rate.notesPerBeat()
	if npb <= 0 {
		npb = 4.0
	}
	clocks := int(24.0/npb + 0.5)
	if clocks < 1 {
		clocks = 1
	}
	c.clocksPerStep = clocks
}

// tick consumes one clock byte. Returns true when a step boundary was
// reached and a trigger queued (or dropped against the pending cap).
func (c *midiClock) tick() bool {
	c.tickTotal++
	if c.clocksPerStep < 1 {
		c.clocksPerStep = 1
	}
	c.counter = int(c.tickTotal % uint64(c.clocksPerStep))
	if c.counter != 0 {
		return false
	}
	if c.pending < maxPendingSteps {
		c.pending++
	}
	return true
}

func (c *midiClock) gateLength(gatePct int) int {
	clocks := c.clocksPerStep * clamp(gatePct, 0, 1600) / 100
	if clocks < 1 {
		clocks = 1
	}
	return clocks
}

// start resets counters and queues the immediate downbeat trigger
func (c *midiClock) start() {
	c.running = true
	c.counter = 0
	c.tickTotal = 0
	c.pending = 1
}

func (c *midiClock) stop() {
	c.running = false
	c.pending = 0
	c.counter = 0
	c.tickTotal = 0
}
