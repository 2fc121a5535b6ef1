package dispatcher

import (
	"math/rand/v2"
	"sync"
)

// Sampler keeps a configurable fraction of events per event name. High-volume
// events such as package views can be sampled down without touching callers.
type Sampler struct {
	mu          sync.RWMutex
	defaultRate float64
	rateByName  map[string]float64
	roll        func() float64
}

// NewSampler creates a sampler with the given default rate in [0, 1].
func NewSampler(defaultRate float64) *Sampler {
	return &Sampler{
		defaultRate: clampRate(defaultRate),
		rateByName:  make(map[string]float64),
		roll:        rand.Float64,
	}
}

// Keep reports whether an event with this name should be published.
func (s *Sampler) Keep(name string) bool {
	rate := s.rateFor(name)
	switch rate {
	case 0:
		return false
	case 1:
		return true
	}
	return s.roll() < rate
}

// SetRate overrides the rate for one event name.
func (s *Sampler) SetRate(name string, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateByName[name] = clampRate(rate)
}

func (s *Sampler) rateFor(name string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rate, ok := s.rateByName[name]; ok {
		return rate
	}
	return s.defaultRate
}

func clampRate(rate float64) float64 {
	return min(max(rate, 0), 1)
}
