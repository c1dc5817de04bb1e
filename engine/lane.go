package engine

// Lanes hold no step cursor of their own: phase is recomputed from the
// absolute rhythm step on every evaluation, so the pattern is a pure
// function of (config, rhythm step) and survives transport pauses.

// Salt spaces keeping the per-concern draw streams decorrelated
const (
	saltDrop    uint32 = 0x1000
	saltNote    uint32 = 0x2000
	saltOctave  uint32 = 0x3000
	saltVel     uint32 = 0x4000
	saltGate    uint32 = 0x5000
	saltMissing uint32 = 0x6000
)

// EuclidHit reports whether step lands on a hit of the Euclidean pattern
// (steps, pulses) shifted by rotation
func EuclidHit(step uint64, steps, pulses, rotation int) bool {
	if steps <= 0 {
		return false
	}
	pulses = clamp(pulses, 0, steps)
	if pulses <= 0 {
		return false
	}
	if pulses >= steps {
		return true
	}
	pos := int(step % uint64(steps))
	rotation %= steps
	if rotation < 0 {
		rotation += steps
	}
	pos = (pos + rotation) % steps
	return (pos*pulses)%steps < pulses
}

// Octave jump offset tables, selected by Lane.OctRange
var octRangeNames = []string{"+1", "-1", "+-1", "+2", "-2", "+-2"}

var octRangeOffsets = [][]int{
	{0, 1},
	{-1, 0},
	{-1, 0, 1},
	{0, 1, 2},
	{-2, -1, 0},
	{-2, -1, 0, 1, 2},
}

func octRangeName(octRange int) string {
	return octRangeNames[clamp(octRange, 0, len(octRangeNames)-1)]
}

func parseOctRange(s string) (int, bool) {
	for i, name := range octRangeNames {
		if s == name {
			return i, true
		}
	}
	return 0, false
}

// cycleStep folds a rhythm step modulo rand_cycle, bounding the period of
// every per-step randomization
func (e *Engine) cycleStep(rhythmStep uint64) uint64 {
	return rhythmStep % uint64(clamp(e.randCycle, 1, 128))
}

// laneSeed derives a per-lane seed from a shared global seed
func laneSeed(seed, laneIdx int, offset uint32) uint32 {
	return uint32(seed+1) + uint32((laneIdx+1)*1000) + offset
}

// shouldDrop runs the seeded drop test for a lane hit
func (e *Engine) shouldDrop(lane *Lane, laneIdx int, rhythmStep uint64) bool {
	if lane.Drop <= 0 {
		return false
	}
	r := stepRand(uint32(lane.DropSeed+1), e.cycleStep(rhythmStep), saltDrop+uint32(laneIdx))
	return chance(r, lane.Drop)
}

// foldIndex reflects an out-of-range index back into [0, count) as a
// triangular wave
func foldIndex(idx, count int) int {
	if count <= 1 {
		return 0
	}
	period := (count - 1) * 2
	idx %= period
	if idx < 0 {
		idx += period
	}
	if idx >= count {
		idx = period - idx
	}
	return idx
}

// resolveIndex applies the missing-note policy when the requested register
// index is outside the current pool. Returns -1 for skip.
func (e *Engine) resolveIndex(laneIdx, requested, regCount int, rhythmStep uint64) int {
	if regCount <= 0 {
		return -1
	}
	if requested >= 0 && requested < regCount {
		return requested
	}
	switch e.missingPolicy {
	case MissingFold:
		return foldIndex(requested, regCount)
	case MissingWrap:
		idx := requested % regCount
		if idx < 0 {
			idx += regCount
		}
		return idx
	case MissingRandom:
		r := stepRand(laneSeed(e.missingSeed, laneIdx, saltMissing), e.cycleStep(rhythmStep), saltMissing)
		return int(r % uint32(regCount))
	default:
		return -1
	}
}

// selectNote resolves a lane's pitch for one rhythm step: register lookup,
// missing-note policy, note substitution, octave offsets and the seeded
// octave jump. Returns -1 when the lane emits nothing this step.
func (e *Engine) selectNote(lane *Lane, laneIdx int, rhythmStep uint64) int {
	var register [MaxRegisterNotes]int
	regCount := e.buildRegister(register[:])
	if regCount <= 0 {
		return -1
	}
	cycle := e.cycleStep(rhythmStep)

	baseIdx := clamp(lane.Note, 1, MaxRegisterNotes) - 1
	baseIdx = e.resolveIndex(laneIdx, baseIdx, regCount, rhythmStep)
	if baseIdx < 0 {
		return -1
	}

	idx := baseIdx
	if lane.NoteRnd > 0 && regCount > 1 {
		r := stepRand(uint32(lane.NoteSeed+1), cycle, saltNote+uint32(laneIdx))
		if chance(r, lane.NoteRnd) {
			// Substitution always lands on a different index: draw from
			// the other regCount-1 slots and shift past the base.
			idx = int((r >> 8) % uint32(regCount-1))
			if idx >= baseIdx {
				idx++
			}
		}
	}

	note := register[idx]
	note += clamp(e.octave, -3, 3) * 12
	note += clamp(lane.Octave, -3, 3) * 12
	if lane.OctRnd > 0 {
		r := stepRand(uint32(lane.OctSeed+1), cycle, saltOctave+uint32(laneIdx))
		if chance(r, lane.OctRnd) {
			offsets := octRangeOffsets[clamp(lane.OctRange, 0, len(octRangeOffsets)-1)]
			pick := int((r >> 8) % uint32(len(offsets)))
			note += offsets[pick] * 12
		}
	}
	return clamp(note, 0, 127)
}

// noteVelocity resolves a lane's velocity: lane override or global base,
// plus the seeded global randomization
func (e *Engine) noteVelocity(lane *Lane, laneIdx int, rhythmStep uint64) int {
	velocity := e.velocity
	if lane.Velocity > 0 {
		velocity = lane.Velocity
	}
	velocity = clamp(velocity, 1, 127)
	if e.velocityRnd > 0 {
		r := stepRand(laneSeed(e.rndSeed, laneIdx, saltVel), e.cycleStep(rhythmStep), saltVel)
		velocity += signedOffset(r, e.velocityRnd)
	}
	return clamp(velocity, 1, 127)
}

// noteGate resolves a lane's gate percentage the same way
func (e *Engine) noteGate(lane *Lane, laneIdx int, rhythmStep uint64) int {
	gate := e.gate
	if lane.Gate > 0 {
		gate = lane.Gate
	}
	gate = clamp(gate, 0, 1600)
	if e.gateRnd > 0 {
		r := stepRand(laneSeed(e.rndSeed, laneIdx, saltGate), e.cycleStep(rhythmStep), saltGate)
		gate += signedOffset(r, e.gateRnd)
	}
	return clamp(gate, 0, 1600)
}
