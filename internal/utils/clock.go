package utils

import (
	"sync"
	"time"
)

// Clock abstracts wall time and delayed execution so that scheduling can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) func() bool
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

// AfterFunc runs f in its own goroutine after d. The returned function cancels it.
func (s SystemClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type scheduled struct {
	at time.Time
	f  func()
}

// MockClock only moves forward through Advance. Scheduled functions run synchronously from Advance.
type MockClock struct {
	mu       sync.Mutex
	FixedNow time.Time
	pending  []*scheduled
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FixedNow = now
}

func (m *MockClock) AfterFunc(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	task := &scheduled{at: m.FixedNow.Add(d), f: f}
	m.pending = append(m.pending, task)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, p := range m.pending {
			if p == task {
				m.pending = append(m.pending[:i], m.pending[i+1:]...)
				return true
			}
		}
		return false
	}
}

// Advance moves the clock and runs every function that became due.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.FixedNow = m.FixedNow.Add(d)
	var due []*scheduled
	remaining := m.pending[:0]
	for _, p := range m.pending {
		if !p.at.After(m.FixedNow) {
			due = append(due, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	m.pending = remaining
	m.mu.Unlock()

	for _, p := range due {
		p.f()
	}
}

// Pending reports how many scheduled functions have not run yet.
func (m *MockClock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
