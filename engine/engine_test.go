package engine

import (
	"testing"

	"eucalypso/midi"
)

const testSampleRate = 44100

func noteOnMsg(note, vel uint8) []byte { return []byte{0x90, note, vel} }
func noteOffMsg(note uint8) []byte     { return []byte{0x80, note, 0} }

func countOnOff(evs []midi.Event) (ons, offs int) {
	for _, e := range evs {
		if e.IsNoteOn() {
			ons++
		}
		if e.IsNoteOff() {
			offs++
		}
	}
	return
}

// Internal sync at 120 bpm, 1/16 rate, single always-hit lane, one held
// note: every step boundary emits note-on(60, 100), gate expiry emits the
// matching note-off, and releasing the key flushes the open voice.
func TestInternalSyncScenario(t *testing.T) {
	e := New()
	e.SetParam("retrigger_mode", "restart")
	e.SetParam("lane1_steps", "4")
	e.SetParam("lane1_pulses", "4")
	e.SetParam("lane1_rotation", "0")

	buf := midi.NewBuffer(16)
	e.ProcessMIDI(noteOnMsg(60, 100), buf)
	if buf.Len() != 0 {
		t.Fatalf("note-on input must not emit, got %v", buf.Events())
	}

	// One step is 5512.5 frames; 5513-frame blocks land one step each
	var ons, offs int
	for block := 0; block < 4; block++ {
		buf.Reset()
		e.Tick(5513, testSampleRate, buf)
		o, f := countOnOff(buf.Events())
		ons += o
		offs += f
		for _, ev := range buf.Events() {
			if ev.Data1 != 60 {
				t.Fatalf("unexpected pitch %d", ev.Data1)
			}
			if ev.IsNoteOn() && ev.Data2 != 100 {
				t.Fatalf("velocity %d, want 100", ev.Data2)
			}
		}
	}
	if ons != 4 {
		t.Fatalf("want 4 note-ons over 4 step blocks, got %d", ons)
	}
	if offs != 3 {
		t.Fatalf("want 3 gate expiries so far, got %d", offs)
	}
	if e.voices.count() != 1 {
		t.Fatalf("one voice should still sound, got %d", e.voices.count())
	}

	// Releasing the key under restart retriggering flushes the voice
	buf.Reset()
	e.ProcessMIDI(noteOffMsg(60), buf)
	if _, f := countOnOff(buf.Events()); f != 1 {
		t.Fatalf("key release must flush the open voice, got %v", buf.Events())
	}
	if e.voices.count() != 0 {
		t.Fatal("voices must be empty after release flush")
	}
}

func TestInternalStartFiresDownbeatImmediately(t *testing.T) {
	e := New()
	e.SetParam("lane1_pulses", "16")
	buf := midi.NewBuffer(8)
	e.Tick(100, testSampleRate, buf) // settle timing
	e.ProcessMIDI(noteOnMsg(60, 100), buf)
	e.ProcessMIDI([]byte{midi.Start}, buf)
	buf.Reset()
	e.Tick(1, testSampleRate, buf)
	if ons, _ := countOnOff(buf.Events()); ons != 1 {
		t.Fatalf("start must arm an immediate downbeat, got %v", buf.Events())
	}
	if e.anchorStep != 1 {
		t.Fatalf("anchor step = %d, want 1", e.anchorStep)
	}
}

func TestClockSyncScenario(t *testing.T) {
	e := New()
	e.SetParam("sync", "clock")
	e.SetParam("lane1_steps", "4")
	e.SetParam("lane1_pulses", "4")

	buf := midi.NewBuffer(16)
	e.ProcessMIDI([]byte{midi.Start}, buf)
	e.ProcessMIDI(noteOnMsg(60, 100), buf)
	if buf.Len() != 0 {
		t.Fatalf("no emission before the host drains, got %v", buf.Events())
	}

	// Start queues the downbeat; the next Tick drains it
	e.Tick(0, testSampleRate, buf)
	if ons, _ := countOnOff(buf.Events()); ons != 1 {
		t.Fatalf("downbeat on first drain, got %v", buf.Events())
	}

	// Six clock ticks at 1/16 = one step: gate (100%) expires on the
	// sixth tick and the next boundary queues
	buf.Reset()
	for i := 0; i < 6; i++ {
		e.ProcessMIDI([]byte{midi.Clock}, buf)
	}
	if _, offs := countOnOff(buf.Events()); offs != 1 {
		t.Fatalf("gate should expire after 6 ticks, got %v", buf.Events())
	}
	buf.Reset()
	e.Tick(0, testSampleRate, buf)
	if ons, _ := countOnOff(buf.Events()); ons != 1 {
		t.Fatalf("queued boundary should fire one step, got %v", buf.Events())
	}
}

func TestStopEmitsAllNotesOffFirst(t *testing.T) {
	e := New()
	e.SetParam("sync", "clock")
	e.SetParam("lane1_pulses", "16")
	buf := midi.NewBuffer(16)
	e.ProcessMIDI([]byte{midi.Start}, buf)
	e.ProcessMIDI(noteOnMsg(60, 100), buf)
	e.Tick(0, testSampleRate, buf)
	if e.voices.count() == 0 {
		t.Fatal("precondition: a voice should be sounding")
	}

	buf.Reset()
	e.ProcessMIDI([]byte{midi.Stop}, buf)
	evs := buf.Events()
	if len(evs) < 2 {
		t.Fatalf("want CC123 plus flush, got %v", evs)
	}
	first := evs[0]
	if first.Status != midi.CC || first.Data1 != midi.CCAllNotesOff {
		t.Fatalf("first emission must be CC123, got %+v", first)
	}
	for _, ev := range evs[1:] {
		if !ev.IsNoteOff() {
			t.Fatalf("flush must only emit note-offs, got %+v", ev)
		}
	}
	if e.voices.count() != 0 {
		t.Fatal("stop must close every voice")
	}
	if e.anchorStep != 0 || e.clock.tickTotal != 0 || e.clock.pending != 0 {
		t.Fatal("stop must zero all transport counters")
	}
	if e.notes.activeCount() != 0 {
		t.Fatal("stop must clear note state")
	}
}

func TestPendingTriggerCap(t *testing.T) {
	e := New()
	e.SetParam("sync", "clock")
	e.SetParam("lane1_steps", "4")
	e.SetParam("lane1_pulses", "4")
	buf := midi.NewBuffer(4)
	e.ProcessMIDI([]byte{midi.Start}, buf)
	e.ProcessMIDI(noteOnMsg(60, 100), buf)

	// A long stall: 40 step boundaries arrive with no host drain
	for i := 0; i < 6*40; i++ {
		e.ProcessMIDI([]byte{midi.Clock}, buf)
	}
	if e.clock.pending > maxPendingSteps {
		t.Fatalf("pending %d exceeds cap %d", e.clock.pending, maxPendingSteps)
	}

	big := midi.NewBuffer(128)
	e.Tick(0, testSampleRate, big)
	if ons, _ := countOnOff(big.Events()); ons > maxPendingSteps {
		t.Fatalf("drain fired %d steps, cap is %d", ons, maxPendingSteps)
	}
}

func TestEmissionTruncationKeepsStateConsistent(t *testing.T) {
	e := New()
	e.SetParam("sync", "clock")
	e.SetParam("lane1_steps", "4")
	e.SetParam("lane1_pulses", "4")
	e.SetParam("lane2_enabled", "on")
	e.SetParam("lane2_steps", "4")
	e.SetParam("lane2_pulses", "4")
	e.SetParam("lane2_note", "2")

	setup := midi.NewBuffer(4)
	e.ProcessMIDI([]byte{midi.Start}, setup)
	e.ProcessMIDI(noteOnMsg(60, 100), setup)
	e.ProcessMIDI(noteOnMsg(64, 100), setup)

	tiny := midi.NewBuffer(1)
	e.Tick(0, testSampleRate, tiny)
	if tiny.Len() != 1 {
		t.Fatalf("want exactly one truncated emission, got %v", tiny.Events())
	}
	if e.voices.count() != 1 {
		t.Fatalf("only the emitted note may own a voice, got %d", e.voices.count())
	}
}

func TestUnrecognizedMessagePassesThrough(t *testing.T) {
	e := New()
	buf := midi.NewBuffer(4)
	msg := []byte{0xB0, 7, 101} // CC volume
	e.ProcessMIDI(msg, buf)
	evs := buf.Events()
	if len(evs) != 1 || evs[0].Status != 0xB0 || evs[0].Data1 != 7 || evs[0].Data2 != 101 {
		t.Fatalf("CC must pass through unchanged, got %v", evs)
	}

	buf.Reset()
	e.ProcessMIDI([]byte{0xD0, 64}, buf) // channel pressure, 2 bytes
	if buf.Len() != 1 || buf.Events()[0].Len != 2 {
		t.Fatalf("2-byte message must keep its length, got %v", buf.Events())
	}
}

func TestNoEmissionWithoutActiveNotes(t *testing.T) {
	e := New()
	e.SetParam("lane1_pulses", "16")
	buf := midi.NewBuffer(8)
	for i := 0; i < 4; i++ {
		e.Tick(6000, testSampleRate, buf)
	}
	if buf.Len() != 0 {
		t.Fatalf("steps with no active notes must stay silent, got %v", buf.Events())
	}
}

func TestPhraseRestartRealignsLanePhase(t *testing.T) {
	e := New()
	e.SetParam("sync", "clock")
	e.SetParam("retrigger_mode", "restart")
	e.SetParam("lane1_steps", "8")
	e.SetParam("lane1_pulses", "3") // hits at rhythm steps 0, 3, 6

	buf := midi.NewBuffer(16)
	e.ProcessMIDI([]byte{midi.Start}, buf)
	e.ProcessMIDI(noteOnMsg(60, 100), buf)
	e.Tick(0, testSampleRate, buf) // rhythm step 0: hit
	if ons, _ := countOnOff(buf.Events()); ons != 1 {
		t.Fatalf("downbeat hit expected, got %v", buf.Events())
	}

	// Advance one step (rhythm step 1: no hit), release and re-press to
	// arm a phrase restart, then the next step must be a downbeat again.
	buf.Reset()
	for i := 0; i < 6; i++ {
		e.ProcessMIDI([]byte{midi.Clock}, buf)
	}
	e.Tick(0, testSampleRate, buf)
	e.ProcessMIDI(noteOffMsg(60), buf)
	e.ProcessMIDI(noteOnMsg(60, 100), buf)
	buf.Reset()
	for i := 0; i < 6; i++ {
		e.ProcessMIDI([]byte{midi.Clock}, buf)
	}
	e.Tick(0, testSampleRate, buf)
	if ons, _ := countOnOff(buf.Events()); ons != 1 {
		t.Fatalf("restarted phrase must hit its downbeat, got %v", buf.Events())
	}
	if e.phraseAnchorStep == 0 {
		t.Fatal("phrase anchor should have snapped forward")
	}
}

func TestContinueResumesClockWithoutReset(t *testing.T) {
	e := New()
	e.SetParam("sync", "clock")
	buf := midi.NewBuffer(8)
	e.ProcessMIDI([]byte{midi.Start}, buf)
	for i := 0; i < 6; i++ {
		e.ProcessMIDI([]byte{midi.Clock}, buf)
	}
	tickBefore := e.clock.tickTotal
	e.ProcessMIDI([]byte{midi.Continue}, buf)
	if e.clock.tickTotal != tickBefore {
		t.Fatal("continue must not reset the external clock phase")
	}
	if !e.clock.running {
		t.Fatal("continue must resume")
	}
}

// A gate opened under internal sync is counted in sample frames; after a
// switch to clock sync it must expire within the same musical time, not
// after thousands of clock ticks.
func TestSyncSwitchConvertsGateUnits(t *testing.T) {
	e := New()
	e.SetParam("lane1_steps", "4")
	e.SetParam("lane1_pulses", "4")
	buf := midi.NewBuffer(16)
	e.ProcessMIDI(noteOnMsg(60, 100), buf)
	e.Tick(5513, testSampleRate, buf)
	if e.voices.count() != 1 {
		t.Fatal("precondition: a frame-denominated voice should be open")
	}

	e.SetParam("sync", "clock")
	buf.Reset()
	for i := 0; i < 6; i++ {
		e.ProcessMIDI([]byte{midi.Clock}, buf)
	}
	if _, offs := countOnOff(buf.Events()); offs != 1 {
		t.Fatalf("gate must expire within one clock step after the switch, got %v", buf.Events())
	}
	if e.voices.count() != 0 {
		t.Fatalf("no voice may outlive its converted gate, %d open", e.voices.count())
	}
}

func TestSyncSwitchBackToInternalConvertsGateUnits(t *testing.T) {
	e := New()
	e.SetParam("sync", "clock")
	e.SetParam("lane1_steps", "4")
	e.SetParam("lane1_pulses", "4")
	buf := midi.NewBuffer(16)
	e.ProcessMIDI([]byte{midi.Start}, buf)
	e.ProcessMIDI(noteOnMsg(60, 100), buf)
	e.Tick(0, testSampleRate, buf) // voice opens with a 6-tick gate
	e.ProcessMIDI(noteOffMsg(60), buf)
	e.ProcessMIDI([]byte{midi.Clock}, buf)
	e.ProcessMIDI([]byte{midi.Clock}, buf) // 4 ticks of gate left

	e.SetParam("sync", "internal")
	buf.Reset()
	// 4/6 of a 5512.5-frame step
	e.Tick(3675, testSampleRate, buf)
	if _, offs := countOnOff(buf.Events()); offs != 1 {
		t.Fatalf("converted gate should expire after its frame share, got %v", buf.Events())
	}
	if e.voices.count() != 0 {
		t.Fatal("no voice may survive its converted countdown")
	}
}

// Stop parks the internal transport: held keys stay tracked but no steps
// fire until the next Start
func TestStopParksInternalTransport(t *testing.T) {
	e := New()
	e.SetParam("lane1_pulses", "16")
	buf := midi.NewBuffer(16)
	e.ProcessMIDI(noteOnMsg(60, 100), buf)
	e.Tick(6000, testSampleRate, buf)
	if ons, _ := countOnOff(buf.Events()); ons == 0 {
		t.Fatal("precondition: transport should free-run from construction")
	}

	e.ProcessMIDI([]byte{midi.Stop}, buf)
	if e.Snapshot().Running {
		t.Fatal("stop must report a stopped transport")
	}
	e.ProcessMIDI(noteOnMsg(60, 100), buf)
	buf.Reset()
	e.Tick(6000, testSampleRate, buf)
	if buf.Len() != 0 {
		t.Fatalf("parked transport must not fire steps, got %v", buf.Events())
	}

	e.ProcessMIDI([]byte{midi.Start}, buf)
	buf.Reset()
	e.Tick(1, testSampleRate, buf)
	if ons, _ := countOnOff(buf.Events()); ons != 1 {
		t.Fatalf("start must resume with a downbeat, got %v", buf.Events())
	}
}

func TestSnapshotReflectsState(t *testing.T) {
	e := New()
	e.SetParam("bpm", "150")
	e.ProcessMIDI(noteOnMsg(62, 80), midi.NewBuffer(1))
	st := e.Snapshot()
	if st.BPM != 150 || st.Sync != SyncInternal || !st.Running {
		t.Fatalf("snapshot globals wrong: %+v", st)
	}
	if len(st.ActiveNotes) != 1 || st.ActiveNotes[0] != 62 {
		t.Fatalf("snapshot active notes wrong: %v", st.ActiveNotes)
	}
	if len(st.Register) != 1 || st.Register[0] != 62 {
		t.Fatalf("snapshot register wrong: %v", st.Register)
	}
	if !st.Lanes[0].Enabled || st.Lanes[1].Enabled {
		t.Fatal("snapshot lanes wrong")
	}
}
