package engine

// Capacity limits
const (
	MaxLanes         = 4
	MaxHeldNotes     = 16
	MaxRegisterNotes = 24
	MaxVoices        = 64

	scaleBaseNote     = 60
	defaultBPM        = 120
	defaultSampleRate = 44100

	// Hard cap on queued anchor-step triggers in clock mode, so a stalled
	// host cannot build up an unbounded burst of catch-up steps.
	maxPendingSteps = 8
)

// PlayMode selects how held keys map to the active note set
type PlayMode int

const (
	PlayHold PlayMode = iota
	PlayLatch
)

func (m PlayMode) String() string {
	if m == PlayLatch {
		return "latch"
	}
	return "hold"
}

func parsePlayMode(s string) PlayMode {
	if s == "latch" {
		return PlayLatch
	}
	return PlayHold
}

// RetriggerMode selects whether lane phase restarts with a new note set
type RetriggerMode int

const (
	RetrigRestart RetriggerMode = iota
	RetrigCont
)

func (m RetriggerMode) String() string {
	if m == RetrigCont {
		return "cont"
	}
	return "restart"
}

func parseRetriggerMode(s string) RetriggerMode {
	if s == "cont" {
		return RetrigCont
	}
	return RetrigRestart
}

// SyncMode selects the transport source
type SyncMode int

const (
	SyncInternal SyncMode = iota
	SyncClock
)

func (m SyncMode) String() string {
	if m == SyncClock {
		return "clock"
	}
	return "internal"
}

func parseSyncMode(s string) SyncMode {
	if s == "clock" {
		return SyncClock
	}
	return SyncInternal
}

// Rate is the step subdivision
type Rate int

const (
	Rate1_32 Rate = iota
	Rate1_16T
	Rate1_16
	Rate1_8T
	Rate1_8
	Rate1_4T
	Rate1_4
	Rate1_2
	Rate1_1
)

var rateNames = []string{"1/32", "1/16T", "1/16", "1/8T", "1/8", "1/4T", "1/4", "1/2", "1"}

func (r Rate) String() string {
	if r < Rate1_32 || r > Rate1_1 {
		return "1/16"
	}
	return rateNames[r]
}

func parseRate(s string) Rate {
	for i, name := range rateNames {
		if s == name {
			return Rate(i)
		}
	}
	return Rate1_16
}

// notesPerBeat returns how many steps fit in one quarter note at this rate
func (r Rate) notesPerBeat() float64 {
	switch r {
	case Rate1_32:
		return 8.0
	case Rate1_16T:
		return 6.0
	case Rate1_16:
		return 4.0
	case Rate1_8T:
		return 3.0
	case Rate1_8:
		return 2.0
	case Rate1_4T:
		return 1.5
	case Rate1_4:
		return 1.0
	case Rate1_2:
		return 0.5
	default:
		return 0.25
	}
}

// isTriplet reports whether the rate is a triplet division. Swing does not
// apply to triplets.
func (r Rate) isTriplet() bool {
	return r == Rate1_16T || r == Rate1_8T || r == Rate1_4T
}

// RegisterMode selects where the note pool comes from
type RegisterMode int

const (
	RegisterHeld RegisterMode = iota
	RegisterScale
)

func (m RegisterMode) String() string {
	if m == RegisterScale {
		return "scale"
	}
	return "held"
}

func parseRegisterMode(s string) RegisterMode {
	if s == "scale" {
		return RegisterScale
	}
	return RegisterHeld
}

// HeldOrder selects how held notes are ordered in the register
type HeldOrder int

const (
	HeldUp HeldOrder = iota
	HeldDown
	HeldPlayed
	HeldRand
)

func (o HeldOrder) String() string {
	switch o {
	case HeldDown:
		return "down"
	case HeldPlayed:
		return "played"
	case HeldRand:
		return "rand"
	default:
		return "up"
	}
}

func parseHeldOrder(s string) HeldOrder {
	switch s {
	case "down":
		return HeldDown
	case "played":
		return HeldPlayed
	case "rand":
		return HeldRand
	default:
		return HeldUp
	}
}

// MissingNotePolicy resolves register indexes beyond the current pool
type MissingNotePolicy int

const (
	MissingSkip MissingNotePolicy = iota
	MissingFold
	MissingWrap
	MissingRandom
)

func (p MissingNotePolicy) String() string {
	switch p {
	case MissingFold:
		return "fold"
	case MissingWrap:
		return "wrap"
	case MissingRandom:
		return "random"
	default:
		return "skip"
	}
}

func parseMissingNotePolicy(s string) MissingNotePolicy {
	switch s {
	case "fold":
		return MissingFold
	case "wrap":
		return MissingWrap
	case "random":
		return MissingRandom
	default:
		return MissingSkip
	}
}

// Lane is one Euclidean generator's configuration. All fields are kept in
// clamped canonical range by the param surface.
type Lane struct {
	Enabled  bool
	Steps    int
	Pulses   int
	Rotation int
	Drop     int // percent chance a hit is silently dropped
	DropSeed int
	Note     int // 1-based register index
	NoteRnd  int // percent chance of note substitution
	NoteSeed int
	Octave   int
	OctRnd   int // percent chance of an octave jump
	OctSeed  int
	OctRange int // index into octave offset tables
	Velocity int // 0 = inherit global
	Gate     int // 0 = inherit global
}

// normalize re-clamps pulses and rotation against the current step count
func (l *Lane) normalize() {
	l.Steps = clamp(l.Steps, 1, 128)
	l.Pulses = clamp(l.Pulses, 0, l.Steps)
	l.Rotation = clamp(l.Rotation, 0, l.Steps-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
