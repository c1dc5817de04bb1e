package engine

// The engine never uses wall-clock or shared PRNG state. Every draw is a
// pure function of (seed, step, salt) so a given configuration replays
// bit-identically on any transport.

// mix32 is a 32-bit avalanche hash
func mix32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// next32 advances a sequential draw stream (used only for the register
// shuffle, where the stream itself is re-seeded deterministically)
func next32(state *uint32) uint32 {
	*state = mix32(*state + 0x9e3779b9)
	return *state
}

// stepRand produces a reproducible draw from (seed, step, salt),
// independent of call history
func stepRand(seed uint32, step uint64, salt uint32) uint32 {
	lo := uint32(step)
	hi := uint32(step >> 32)
	s := seed
	if s == 0 {
		s = 1
	}
	return mix32(s ^ lo ^ mix32(hi^salt) ^ salt)
}

// chance reports whether a draw lands under pct percent
func chance(r uint32, pct int) bool {
	pct = clamp(pct, 0, 100)
	if pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	return int(r%100) < pct
}

// signedOffset maps a draw onto [-amount, amount]
func signedOffset(r uint32, amount int) int {
	if amount <= 0 {
		return 0
	}
	span := amount*2 + 1
	return int(r%uint32(span)) - amount
}

// noteSetHash is an FNV-1a hash over an ordered note set. Used to re-seed
// the held-order shuffle whenever the active set changes.
func noteSetHash(notes []uint8) uint32 {
	h := uint32(2166136261)
	for _, n := range notes {
		h ^= uint32(n)
		h *= 16777619
	}
	return h
}
