package anim

import (
	"sync"
	"time"
)

// DefaultMaxDelta caps a single tick so that backgrounding does not make
// animations jump.
const DefaultMaxDelta = 100 * time.Millisecond

// Clocker turns frame timestamps into deltas and advances the registered
// mixers with them.
type Clocker struct {
	MaxDelta time.Duration
	// OnClamp, if set, is called with the raw gap whenever a delta is capped.
	OnClamp func(raw time.Duration)

	mu     sync.Mutex
	prev   time.Duration
	primed bool
	mixers []*Mixer
}

// NewClocker returns a clock capping each step at maxDelta, DefaultMaxDelta if not positive.
func NewClocker(maxDelta time.Duration) *Clocker {
	if maxDelta <= 0 {
		maxDelta = DefaultMaxDelta
	}
	return &Clocker{MaxDelta: maxDelta}
}

// Register adds m. Registering the same mixer twice has no effect.
func (c *Clocker) Register(m *Mixer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, x := range c.mixers {
		if x == m {
			return
		}
	}
	c.mixers = append(c.mixers, m)
}

// Unregister removes m and reports whether it was registered.
func (c *Clocker) Unregister(m *Mixer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range c.mixers {
		if x == m {
			c.mixers = append(c.mixers[:i], c.mixers[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Clocker) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mixers)
}

// Tick computes the delta in seconds since the previous tick and applies it to
// every registered mixer. The first tick yields zero; time going backwards
// yields zero; gaps longer than MaxDelta are capped.
func (c *Clocker) Tick(now time.Duration) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var d time.Duration
	if c.primed {
		d = max(0, now-c.prev)
	}
	c.prev = now
	c.primed = true

	if c.MaxDelta > 0 && d > c.MaxDelta {
		if c.OnClamp != nil {
			c.OnClamp(d)
		}
		d = c.MaxDelta
	}

	dt := d.Seconds()
	for _, m := range c.mixers {
		m.Advance(dt)
	}
	return dt
}

// Reset forgets the previous timestamp so the next tick yields zero.
func (c *Clocker) Reset() {
	c.mu.Lock()
	c.primed = false
	c.mu.Unlock()
}
