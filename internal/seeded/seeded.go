// Package seeded provides a small deterministic PRNG and a Fisher-Yates
// shuffle driven by it. Output is reproducible for a given seed; the exact
// bit sequence is not part of any contract.
package seeded

// Source yields a stream of floats in [0, 1).
type Source interface {
	Float64() float64
}

// Mulberry32 is a 32-bit state generator. Not safe for concurrent use.
type Mulberry32 struct {
	state uint32
}

func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

func (m *Mulberry32) Float64() float64 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// Shuffle permutes items in place.
func Shuffle[T any](src Source, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := int(src.Float64() * float64(i+1))
		if j > i {
			j = i
		}
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffled returns a shuffled copy and leaves items untouched.
func Shuffled[T any](src Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	Shuffle(src, out)
	return out
}
