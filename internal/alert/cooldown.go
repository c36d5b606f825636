package alert

import (
	"sync"
	"time"
)

// Cooldown suppresses repeated alerts of the same key within a period.
type Cooldown struct {
	period time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

func NewCooldown(period time.Duration) *Cooldown {
	return &Cooldown{
		period: period,
		last:   make(map[string]time.Time),
	}
}

// ShouldTrigger reports whether key is outside its cooldown at now.
func (c *Cooldown) ShouldTrigger(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldTrigger(key, now)
}

func (c *Cooldown) shouldTrigger(key string, now time.Time) bool {
	last, ok := c.last[key]
	if !ok {
		return true
	}
	return now.After(last.Add(c.period))
}

// Allow checks and, when allowed, records key as triggered at now.
func (c *Cooldown) Allow(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.shouldTrigger(key, now) {
		return false
	}
	c.last[key] = now
	return true
}

// Reset forgets key so the next check triggers immediately.
func (c *Cooldown) Reset(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.last, key)
}
