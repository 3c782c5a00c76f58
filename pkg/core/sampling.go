package core

import (
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64                       // Uniform float in [0, 1)
	Get3D() Vec3                          // Three independent uniform floats in [0, 1)
	Range(minVal, maxVal float64) float64 // Uniform float in [minVal, maxVal)
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; each render loop owns its own instance.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// Range returns a random float64 in [minVal, maxVal)
func (r *RandomSampler) Range(minVal, maxVal float64) float64 {
	return minVal + (maxVal-minVal)*r.random.Float64()
}

// SequenceSampler replays a fixed list of values in order, wrapping around at the end.
// A single value makes every draw identical. The values must leave the rejection
// samplers below an accepted point (e.g. 0.5 maps to the origin of the unit sphere).
type SequenceSampler struct {
	values []float64
	next   int
}

// NewSequenceSampler creates a deterministic sampler; with no values it always returns 0.5
func NewSequenceSampler(values ...float64) *SequenceSampler {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &SequenceSampler{values: values}
}

// Get1D returns the next value of the sequence
func (s *SequenceSampler) Get1D() float64 {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// Get3D returns the next three values of the sequence
func (s *SequenceSampler) Get3D() Vec3 {
	return NewVec3(s.Get1D(), s.Get1D(), s.Get1D())
}

// Range maps the next value of the sequence into [minVal, maxVal)
func (s *SequenceSampler) Range(minVal, maxVal float64) float64 {
	return minVal + (maxVal-minVal)*s.Get1D()
}

// RandomInUnitSphere generates a random point strictly inside the unit sphere
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for {
		// Generate random point in [-1,1]³ cube
		p := NewVec3(sampler.Range(-1, 1), sampler.Range(-1, 1), sampler.Range(-1, 1))
		// Accept if inside unit sphere
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// RandomUnitVector generates a random direction by normalizing a point in the unit sphere
func RandomUnitVector(sampler Sampler) Vec3 {
	return RandomInUnitSphere(sampler).Normalize()
}

// RandomInUnitDisk generates a random point in a unit disk (for depth of field)
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for {
		// Generate random point in [-1,1] x [-1,1] square
		p := NewVec3(sampler.Range(-1, 1), sampler.Range(-1, 1), 0)
		// Accept if inside unit disk
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}
