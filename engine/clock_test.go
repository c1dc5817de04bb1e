package engine

import (
	"math"
	"testing"
)

func TestInternalClockInterval(t *testing.T) {
	var c internalClock
	c.recalc(44100, 120, Rate1_16)
	// 44100 * 60 / (120 * 4) = 5512.5 samples per step
	if math.Abs(c.intervalF-5512.5) > 1e-9 {
		t.Fatalf("interval = %f, want 5512.5", c.intervalF)
	}
	c.recalc(48000, 60, Rate1_4)
	if math.Abs(c.intervalF-48000.0) > 1e-9 {
		t.Fatalf("interval = %f, want 48000", c.intervalF)
	}
}

func TestInternalClockBPMClamped(t *testing.T) {
	var a, b internalClock
	a.recalc(44100, 1000, Rate1_16)
	b.recalc(44100, 240, Rate1_16)
	if a.intervalF != b.intervalF {
		t.Fatal("bpm must clamp to 240")
	}
}

func TestSwingAlternates(t *testing.T) {
	var c internalClock
	c.recalc(44100, 120, Rate1_16)
	base := c.intervalF
	long := c.nextInterval(50, Rate1_16)
	short := c.nextInterval(50, Rate1_16)
	delta := base * 50.0 / 200.0
	if math.Abs(long-(base+delta)) > 1e-9 {
		t.Fatalf("long interval %f, want %f", long, base+delta)
	}
	if math.Abs(short-(base-delta)) > 1e-9 {
		t.Fatalf("short interval %f, want %f", short, base-delta)
	}
	if math.Abs(c.nextInterval(0, Rate1_16)-base) > 1e-9 {
		t.Fatal("zero swing must return base interval")
	}
}

func TestSwingSkippedForTriplets(t *testing.T) {
	var c internalClock
	c.recalc(44100, 120, Rate1_8T)
	base := c.intervalF
	for i := 0; i < 4; i++ {
		if got := c.nextInterval(75, Rate1_8T); math.Abs(got-base) > 1e-9 {
			t.Fatalf("triplet interval %d = %f, want uniform %f", i, got, base)
		}
	}
}

func TestRealignPreservesPhase(t *testing.T) {
	var c internalClock
	c.recalc(44100, 120, Rate1_16)
	c.sampleTotal = 13000 // 13000 mod 5512.5 = 1975 into the current step
	c.realign()
	want := 5512.5 - (13000.0 - 2*5512.5)
	if math.Abs(c.untilStepF-want) > 1e-6 {
		t.Fatalf("untilStep = %f, want %f", c.untilStepF, want)
	}
}

func TestMidiClockTicksPerStep(t *testing.T) {
	cases := []struct {
		rate Rate
		want int
	}{
		{Rate1_32, 3},
		{Rate1_16T, 4},
		{Rate1_16, 6},
		{Rate1_8T, 8},
		{Rate1_8, 12},
		{Rate1_4T, 16},
		{Rate1_4, 24},
		{Rate1_2, 48},
		{Rate1_1, 96},
	}
	for _, tc := range cases {
		var c midiClock
		c.recalc(tc.rate)
		if c.clocksPerStep != tc.want {
			t.Fatalf("rate %s: clocksPerStep = %d, want %d", tc.rate, c.clocksPerStep, tc.want)
		}
	}
}

func TestMidiClockStepBoundaries(t *testing.T) {
	var c midiClock
	c.recalc(Rate1_16) // 6 ticks per step
	c.start()
	if c.pending != 1 {
		t.Fatal("start must queue the downbeat trigger")
	}
	boundaries := 0
	for i := 0; i < 24; i++ {
		if c.tick() {
			boundaries++
		}
	}
	if boundaries != 4 {
		t.Fatalf("24 ticks at 6/step: want 4 boundaries, got %d", boundaries)
	}
	if c.pending != 5 {
		t.Fatalf("pending = %d, want 5", c.pending)
	}
}

func TestMidiClockPendingCap(t *testing.T) {
	var c midiClock
	c.recalc(Rate1_32) // 3 ticks per step
	c.start()
	for i := 0; i < 3*maxPendingSteps*4; i++ {
		c.tick()
	}
	if c.pending > maxPendingSteps {
		t.Fatalf("pending %d exceeds cap %d", c.pending, maxPendingSteps)
	}
}

func TestGateLengthUnits(t *testing.T) {
	var mc midiClock
	mc.recalc(Rate1_16)
	if got := mc.gateLength(100); got != 6 {
		t.Fatalf("clock gate 100%%: want 6 ticks, got %d", got)
	}
	if got := mc.gateLength(50); got != 3 {
		t.Fatalf("clock gate 50: want 3 ticks, got %d", got)
	}
	if got := mc.gateLength(1); got != 1 {
		t.Fatal("gate length floors at 1")
	}

	var ic internalClock
	ic.recalc(44100, 120, Rate1_16)
	if got := ic.gateLength(100); got != 5513 {
		t.Fatalf("internal gate 100: want 5513 frames, got %d", got)
	}
	if got := ic.gateLength(200); got != 11026 {
		t.Fatalf("internal gate 200: want 11026 frames, got %d", got)
	}
}
