//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

package simulation

import "math/rand/v2"

// ReturnSource draws annual returns, in percent, from a normal distribution.
//
// Implementations are not required to be safe for concurrent use. Each task
// owns its own source.
type ReturnSource interface {
	NextAnnualReturn(meanReturn, risk float64) float64
}

// NormalSource is a ReturnSource backed by a private PCG generator.
type NormalSource struct {
	rng *rand.Rand
}

// NewNormalSource returns a source seeded from the runtime's entropy pool, so
// two sources never share a stream.
func NewNormalSource() *NormalSource {
	return NewSeededSource(rand.Uint64(), rand.Uint64())
}

// NewSeededSource returns a deterministic source. It is used by tests and
// benchmarks that need a reproducible stream.
func NewSeededSource(seed1, seed2 uint64) *NormalSource {
	return &NormalSource{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// NextAnnualReturn returns mean + risk*Z with Z standard normal. A zero risk
// yields exactly meanReturn.
func (s *NormalSource) NextAnnualReturn(meanReturn, risk float64) float64 {
	if risk == 0 {
		return meanReturn
	}
	return s.rng.NormFloat64()*risk + meanReturn
}
