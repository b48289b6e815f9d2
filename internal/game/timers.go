package game

import (
	"sync"
	"time"
)

// TimerKey identifies one delayed transition. QuestionIndex 0 is reserved
// for the post-start countdown; question indices are 1-based.
type TimerKey struct {
	RoomID        string
	QuestionIndex int
}

// CountdownKey is the timer key for a room's post-start countdown.
func CountdownKey(roomID string) TimerKey {
	return TimerKey{RoomID: roomID}
}

// TimerManager schedules and cancels keyed delayed callbacks. At most one
// timer is live per key; scheduling an occupied key replaces the previous
// timer. A cancelled timer's callback never runs.
type TimerManager struct {
	mu     sync.Mutex
	timers map[TimerKey]*time.Timer
}

// NewTimerManager creates an empty manager.
func NewTimerManager() *TimerManager {
	return &TimerManager{timers: make(map[TimerKey]*time.Timer)}
}

// Schedule arms fn to run after delay, replacing any timer on the same key.
func (m *TimerManager) Schedule(key TimerKey, delay time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.timers[key]; ok {
		old.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		m.mu.Lock()
		// The key may have been cancelled or rescheduled between the timer
		// firing and this callback taking the lock; only the registered
		// timer may proceed.
		if m.timers[key] != t {
			m.mu.Unlock()
			return
		}
		delete(m.timers, key)
		m.mu.Unlock()
		fn()
	})
	m.timers[key] = t
}

// Cancel drops the timer for key, if any.
func (m *TimerManager) Cancel(key TimerKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[key]; ok {
		t.Stop()
		delete(m.timers, key)
	}
}

// CancelRoom drops every timer belonging to the room.
func (m *TimerManager) CancelRoom(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, t := range m.timers {
		if key.RoomID == roomID {
			t.Stop()
			delete(m.timers, key)
		}
	}
}

// Len reports the number of armed timers.
func (m *TimerManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
