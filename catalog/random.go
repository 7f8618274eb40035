package catalog

import (
	"time"

	"github.com/lixenwraith/endless-road/vmath"
)

// RandomSource supplies template selection indices
type RandomSource interface {
	// IntN returns a value in [0, n)
	IntN(n int) int
}

// NewRandomSource returns a xorshift source; seed 0 seeds from the wall clock
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return vmath.NewFastRand(seed)
}

// SequenceSource replays a fixed index sequence, wrapping at the end
// Each value is reduced modulo n so one sequence fits any catalog size
type SequenceSource struct {
	Values []int
	pos    int
}

func (s *SequenceSource) IntN(n int) int {
	if n <= 0 || len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
