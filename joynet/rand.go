package joynet

// RandMax is the largest value Rand.Int returns.
const RandMax = 0xFFFF

const randScale = 1.0 / (1.0 + RandMax)

// A Rand is a small linear congruential generator that yields the same
// sequence on every platform. Peers of a session seed it identically
// so their simulations draw the same numbers.
// The zero value is seeded with 0.
type Rand struct {
	state uint32
}

// NewRand returns a Rand seeded with seed.
func NewRand(seed uint32) *Rand {
	return &Rand{state: seed}
}

// Seed restarts the sequence.
func (r *Rand) Seed(seed uint32) { r.state = seed }

// Int returns the next value in [0, RandMax].
func (r *Rand) Int() int {
	r.state = r.state*214013 + 2531011

	return int(r.state>>16) & RandMax
}

// Float64 returns a value in [0, 1) built from three draws.
func (r *Rand) Float64() float64 {
	for {
		a := float64(r.Int())
		b := float64(r.Int())
		c := float64(r.Int())

		d := ((a*randScale+b)*randScale + c) * randScale
		if d < 1 {
			return d
		}
	}
}
