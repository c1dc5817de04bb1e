package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Bulk save/restore travels as one flat JSON object under the "state"
// param key: every documented field appears under its param-surface name,
// enum-like fields as strings and numeric fields as numbers.

var globalStringFields = []string{
	"play_mode", "retrigger_mode", "rate", "sync",
	"register_mode", "held_order", "missing_note_policy", "scale_mode",
}

var globalIntFields = []string{
	"bpm", "swing", "max_voices",
	"global_velocity", "global_v_rnd", "global_gate", "global_g_rnd",
	"global_rnd_seed", "rand_cycle",
	"held_order_seed", "missing_note_seed",
	"scale_rng", "root_note", "octave",
}

var laneStringFields = []string{"enabled", "oct_rng"}

var laneIntFields = []string{
	"steps", "pulses", "rotation", "drop", "drop_seed",
	"note", "n_rnd", "n_seed",
	"octave", "oct_rnd", "oct_seed", "velocity", "gate",
}

// stateJSON renders the full param surface as a flat JSON object
func (e *Engine) stateJSON() string {
	state := make(map[string]any)
	put := func(key string, numeric bool) {
		val, ok := e.GetParam(key)
		if !ok {
			return
		}
		if numeric {
			n, err := strconv.Atoi(val)
			if err != nil {
				return
			}
			state[key] = n
		} else {
			state[key] = val
		}
	}
	for _, f := range globalStringFields {
		put(f, false)
	}
	for _, f := range globalIntFields {
		put(f, true)
	}
	for lane := 1; lane <= MaxLanes; lane++ {
		for _, f := range laneStringFields {
			put(fmt.Sprintf("lane%d_%s", lane, f), false)
		}
		for _, f := range laneIntFields {
			put(fmt.Sprintf("lane%d_%s", lane, f), true)
		}
	}
	b, err := json.Marshal(state)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// applyState restores fields from a flat JSON object. Fields that are
// missing or of the wrong shape are skipped individually; nothing aborts
// the rest of the restore.
func (e *Engine) applyState(blob string) {
	var state map[string]any
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return
	}
	applyString := func(key string) {
		if s, ok := state[key].(string); ok {
			e.SetParam(key, s)
		}
	}
	applyInt := func(key string) {
		if n, ok := state[key].(float64); ok {
			e.SetParam(key, strconv.Itoa(int(n)))
		}
	}
	for _, f := range globalStringFields {
		applyString(f)
	}
	for _, f := range globalIntFields {
		applyInt(f)
	}
	for lane := 1; lane <= MaxLanes; lane++ {
		for _, f := range laneStringFields {
			applyString(fmt.Sprintf("lane%d_%s", lane, f))
		}
		for _, f := range laneIntFields {
			applyInt(fmt.Sprintf("lane%d_%s", lane, f))
		}
	}
}
