package engine

// Status is a read-only snapshot of the engine for display surfaces
type Status struct {
	Sync       SyncMode
	Running    bool
	PlayMode   PlayMode
	Retrigger  RetriggerMode
	BPM        int
	Rate       Rate
	Swing      int
	AnchorStep uint64
	PhraseStep uint64
	Pending    int

	RegisterMode RegisterMode
	ActiveNotes  []uint8
	Register     []int
	VoiceNotes   []uint8
	MaxVoices    int

	Lanes [MaxLanes]Lane
}

// Snapshot copies the engine's current display state
func (e *Engine) Snapshot() Status {
	running := e.running
	if e.sync == SyncClock {
		running = e.clock.running
	}
	var register [MaxRegisterNotes]int
	n := e.buildRegister(register[:])
	st := Status{
		Sync:         e.sync,
		Running:      running,
		PlayMode:     e.playMode,
		Retrigger:    e.retrigger,
		BPM:          e.bpm,
		Rate:         e.rate,
		Swing:        e.swing,
		AnchorStep:   e.anchorStep,
		PhraseStep:   e.rhythmStep(e.anchorStep),
		Pending:      e.clock.pending,
		RegisterMode: e.registerMode,
		ActiveNotes:  append([]uint8(nil), e.notes.active...),
		Register:     append([]int(nil), register[:n]...),
		VoiceNotes:   e.voices.notes(),
		MaxVoices:    e.maxVoices,
		Lanes:        e.lanes,
	}
	return st
}
