package transform

import (
	"math/rand"
	"sync"
	"time"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/errors"
)

// ReservoirSampler holds a uniform random sample of k records from a
// stream of unknown length, in O(k) memory (Algorithm R).
type ReservoirSampler struct {
	reservoir [][]string
	k         int
	n         int
	rng       *rand.Rand
	mu        sync.Mutex
}

// NewReservoirSampler creates a sampler targeting k records.
func NewReservoirSampler(k int) *ReservoirSampler {
	return &ReservoirSampler{
		reservoir: make([][]string, 0, k),
		k:         k,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Add offers one record to the sample. The first k records fill the
// reservoir; record i then replaces a random slot with probability k/i.
func (s *ReservoirSampler) Add(record []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.n++
	if s.n <= s.k {
		s.reservoir = append(s.reservoir, append([]string(nil), record...))
		return
	}
	if j := s.rng.Intn(s.n); j < s.k {
		s.reservoir[j] = append([]string(nil), record...)
	}
}

// Sample returns the current reservoir contents.
func (s *ReservoirSampler) Sample() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservoir
}

// Count returns the number of records seen.
func (s *ReservoirSampler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// RateSampler keeps each record independently with probability rate.
type RateSampler struct {
	rate float64
	rng  *rand.Rand
	mu   sync.Mutex
}

// NewRateSampler creates a Bernoulli sampler. Rates at or below 0 keep
// nothing; rates at or above 1 keep everything.
func NewRateSampler(rate float64) *RateSampler {
	return &RateSampler{
		rate: rate,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Keep decides one record.
func (s *RateSampler) Keep() bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.rate
}

// Sample returns a new detached container holding a uniform random
// sample of at most k rows of c, with the same shape, headers, and
// metadata declarations. When c has at most k rows every row is kept.
func Sample(c *container.Container, k int) (*container.Container, error) {
	if k < 1 {
		return nil, errors.Newf(errors.CodeConfig, "sample size must be at least 1, got %d", k)
	}

	sampler := NewReservoirSampler(k)
	for _, row := range c.Records() {
		sampler.Add(row)
	}

	out := container.New(
		container.WithOrientation(c.Orientation()),
		container.WithDelimiter(c.Delimiter()),
	)
	// Metadata first so SetHeaders can mark the trailing meta headers.
	for _, key := range c.MetadataKeys() {
		v, _ := c.MetadataValue(key)
		out.SetMetadata(key, v)
	}
	out.SetHeaders(c.HeaderNames())

	for i, row := range sampler.Sample() {
		if err := out.AddRow(row, nil); err != nil {
			return nil, errors.Wrapf(err, errors.CodeShapeMismatch, "sampled row %d", i)
		}
	}
	return out, nil
}
