package engine

import (
	"strconv"
	"strings"
)

// The param surface is flat string key/value pairs: bare keys for globals,
// laneN_ prefixed keys for the four lanes. Values are clamped to canonical
// range at assignment; out-of-range input is never rejected.

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

// parseLaneKey splits "lane3_steps" into (2, "steps", true)
func parseLaneKey(key string) (int, string, bool) {
	rest, ok := strings.CutPrefix(key, "lane")
	if !ok || len(rest) < 3 {
		return 0, "", false
	}
	n := int(rest[0] - '0')
	if n < 1 || n > MaxLanes || rest[1] != '_' {
		return 0, "", false
	}
	return n - 1, rest[2:], true
}

// SetParam assigns one field by key. Unknown keys are ignored; values are
// clamped, never rejected.
func (e *Engine) SetParam(key, val string) {
	if laneIdx, suffix, ok := parseLaneKey(key); ok {
		e.setLaneParam(&e.lanes[laneIdx], suffix, val)
		return
	}

	switch key {
	case "play_mode":
		mode := parsePlayMode(val)
		e.playMode = mode
		e.notes.setMode(mode)
	case "retrigger_mode":
		e.retrigger = parseRetriggerMode(val)
	case "rate":
		e.rate = parseRate(val)
		e.clock.recalc(e.rate)
		if e.sync == SyncClock {
			// Triggers queued at the old rate's spacing are stale
			e.clock.pending = 0
		}
		e.retime()
	case "sync":
		mode := parseSyncMode(val)
		if mode == e.sync {
			break
		}
		// Open gates are denominated in the outgoing transport's units;
		// convert them before the new transport starts aging them.
		oldStep := e.stepUnits()
		e.sync = mode
		if e.sync == SyncClock {
			e.clock.recalc(e.rate)
			e.clock.pending = 0
			e.clock.running = true
		} else {
			e.running = true
			e.retime()
		}
		e.voices.rescale(oldStep, e.stepUnits())
	case "bpm":
		e.bpm = clamp(atoi(val), 40, 240)
		e.retime()
	case "swing":
		e.swing = clamp(atoi(val), 0, 100)
	case "max_voices":
		e.maxVoices = clamp(atoi(val), 1, MaxVoices)
	case "global_velocity":
		e.velocity = clamp(atoi(val), 1, 127)
	case "global_v_rnd":
		e.velocityRnd = clamp(atoi(val), 0, 127)
	case "global_gate":
		e.gate = clamp(atoi(val), 1, 1600)
	case "global_g_rnd":
		e.gateRnd = clamp(atoi(val), 0, 1600)
	case "global_rnd_seed":
		e.rndSeed = clamp(atoi(val), 0, 65535)
	case "rand_cycle":
		e.randCycle = clamp(atoi(val), 1, 128)
	case "register_mode":
		e.registerMode = parseRegisterMode(val)
	case "held_order":
		e.heldOrder = parseHeldOrder(val)
	case "held_order_seed":
		e.heldOrderSeed = clamp(atoi(val), 0, 65535)
	case "missing_note_policy":
		e.missingPolicy = parseMissingNotePolicy(val)
	case "missing_note_seed":
		e.missingSeed = clamp(atoi(val), 0, 65535)
	case "scale_mode":
		e.scaleMode = parseScaleMode(val)
	case "scale_rng":
		e.scaleRange = clamp(atoi(val), 1, MaxRegisterNotes)
	case "root_note":
		e.rootNote = clamp(atoi(val), 0, 11)
	case "octave":
		e.octave = clamp(atoi(val), -3, 3)
	case "state":
		e.applyState(val)
	}
}

// retime recomputes the internal clock and realigns its phase after a
// bpm/rate/sync change, so phase does not jump discontinuously
func (e *Engine) retime() {
	e.internal.dirty = true
	if e.sync == SyncInternal && e.internal.sampleRate > 0 {
		e.internal.recalc(e.internal.sampleRate, e.bpm, e.rate)
		e.internal.realign()
	}
}

func (e *Engine) setLaneParam(lane *Lane, suffix, val string) {
	switch suffix {
	case "enabled":
		lane.Enabled = val == "on"
	case "steps":
		lane.Steps = clamp(atoi(val), 1, 128)
	case "pulses":
		lane.Pulses = clamp(atoi(val), 0, 128)
	case "rotation":
		lane.Rotation = clamp(atoi(val), 0, 127)
	case "drop":
		lane.Drop = clamp(atoi(val), 0, 100)
	case "drop_seed":
		lane.DropSeed = clamp(atoi(val), 0, 65535)
	case "note":
		lane.Note = clamp(atoi(val), 1, MaxRegisterNotes)
	case "n_rnd":
		lane.NoteRnd = clamp(atoi(val), 0, 100)
	case "n_seed":
		lane.NoteSeed = clamp(atoi(val), 0, 65535)
	case "octave":
		lane.Octave = clamp(atoi(val), -3, 3)
	case "oct_rnd":
		lane.OctRnd = clamp(atoi(val), 0, 100)
	case "oct_seed":
		lane.OctSeed = clamp(atoi(val), 0, 65535)
	case "oct_rng":
		if idx, ok := parseOctRange(val); ok {
			lane.OctRange = idx
		}
	case "velocity":
		lane.Velocity = clamp(atoi(val), 0, 127)
	case "gate":
		lane.Gate = clamp(atoi(val), 0, 1600)
	}
	lane.normalize()
}

// GetParam returns the canonical string value for a key
func (e *Engine) GetParam(key string) (string, bool) {
	if laneIdx, suffix, ok := parseLaneKey(key); ok {
		return getLaneParam(&e.lanes[laneIdx], suffix)
	}

	switch key {
	case "play_mode":
		return e.playMode.String(), true
	case "retrigger_mode":
		return e.retrigger.String(), true
	case "rate":
		return e.rate.String(), true
	case "sync":
		return e.sync.String(), true
	case "bpm":
		return strconv.Itoa(e.bpm), true
	case "swing":
		return strconv.Itoa(e.swing), true
	case "max_voices":
		return strconv.Itoa(e.maxVoices), true
	case "global_velocity":
		return strconv.Itoa(e.velocity), true
	case "global_v_rnd":
		return strconv.Itoa(e.velocityRnd), true
	case "global_gate":
		return strconv.Itoa(e.gate), true
	case "global_g_rnd":
		return strconv.Itoa(e.gateRnd), true
	case "global_rnd_seed":
		return strconv.Itoa(e.rndSeed), true
	case "rand_cycle":
		return strconv.Itoa(e.randCycle), true
	case "register_mode":
		return e.registerMode.String(), true
	case "held_order":
		return e.heldOrder.String(), true
	case "held_order_seed":
		return strconv.Itoa(e.heldOrderSeed), true
	case "missing_note_policy":
		return e.missingPolicy.String(), true
	case "missing_note_seed":
		return strconv.Itoa(e.missingSeed), true
	case "scale_mode":
		return e.scaleMode.String(), true
	case "scale_rng":
		return strconv.Itoa(e.scaleRange), true
	case "root_note":
		return strconv.Itoa(e.rootNote), true
	case "octave":
		return strconv.Itoa(e.octave), true
	case "name":
		return "Eucalypso", true
	case "bank_name":
		return "Factory", true
	case "state":
		return e.stateJSON(), true
	}
	return "", false
}

func getLaneParam(lane *Lane, suffix string) (string, bool) {
	switch suffix {
	case "enabled":
		if lane.Enabled {
			return "on", true
		}
		return "off", true
	case "steps":
		return strconv.Itoa(lane.Steps), true
	case "pulses":
		return strconv.Itoa(lane.Pulses), true
	case "rotation":
		return strconv.Itoa(lane.Rotation), true
	case "drop":
		return strconv.Itoa(lane.Drop), true
	case "drop_seed":
		return strconv.Itoa(lane.DropSeed), true
	case "note":
		return strconv.Itoa(lane.Note), true
	case "n_rnd":
		return strconv.Itoa(lane.NoteRnd), true
	case "n_seed":
		return strconv.Itoa(lane.NoteSeed), true
	case "octave":
		return strconv.Itoa(lane.Octave), true
	case "oct_rnd":
		return strconv.Itoa(lane.OctRnd), true
	case "oct_seed":
		return strconv.Itoa(lane.OctSeed), true
	case "oct_rng":
		return octRangeName(lane.OctRange), true
	case "velocity":
		return strconv.Itoa(lane.Velocity), true
	case "gate":
		return strconv.Itoa(lane.Gate), true
	}
	return "", false
}
