package game

import (
	"sync"
	"time"
)

// ChatCooldown is the minimum spacing between chat messages per connection.
const ChatCooldown = 4 * time.Second

// RateLimiter gates chat messages per connection. State is process-local
// and bounded by the set of live connections: Forget must be called on
// disconnect.
type RateLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time
}

// NewRateLimiter creates a limiter with the given cooldown.
func NewRateLimiter(cooldown time.Duration) *RateLimiter {
	return &RateLimiter{
		cooldown: cooldown,
		last:     make(map[string]time.Time),
	}
}

// Allow reports whether the connection may send at the given time, and if
// so records the send.
func (l *RateLimiter) Allow(connID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.last[connID]; ok && now.Sub(last) < l.cooldown {
		return false
	}
	l.last[connID] = now
	return true
}

// Forget drops the connection's entry.
func (l *RateLimiter) Forget(connID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.last, connID)
}
