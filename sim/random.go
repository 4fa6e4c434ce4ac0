package sim

// Hash-based pseudo-random draws. Every record seeds its own stream from
// (engine seed, step, record index), so results are bit-for-bit reproducible
// no matter how the step is split across workers. Mirrors the hash in
// shaders/particles_sim.wgsl.

func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

type rng struct {
	state uint32
}

func newRNG(seed, step, index uint32) rng {
	return rng{state: hash32(seed ^ hash32(step^hash32(index+0x9e3779b9)))}
}

func (r *rng) next() uint32 {
	r.state = hash32(r.state)
	return r.state
}

// float returns a draw in [0, 1).
func (r *rng) float() float32 {
	return float32(r.next()>>8) * (1.0 / 16777216.0)
}

// rangeFloat returns a draw in [lo, hi).
func (r *rng) rangeFloat(lo, hi float32) float32 {
	return lo + (hi-lo)*r.float()
}
