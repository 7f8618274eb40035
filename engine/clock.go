package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// TimeProvider supplies wall-clock readings
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider returns time.Now, which carries a monotonic reading
type MonotonicTimeProvider struct{}

func NewMonotonicTimeProvider() *MonotonicTimeProvider {
	return &MonotonicTimeProvider{}
}

func (MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}

// MockTimeProvider provides a controllable time source for testing
type MockTimeProvider struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewMockTimeProvider creates a new mock time provider with the given start time
func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{currentTime: startTime}
}

func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance moves the mocked time forward by d
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// PausableClock is track time: real time minus every paused interval
type PausableClock struct {
	mu sync.RWMutex

	source    TimeProvider
	start     time.Time
	paused    atomic.Bool
	pauseAt   time.Time
	pausedFor time.Duration
}

// NewPausableClock starts a running clock on source
func NewPausableClock(source TimeProvider) *PausableClock {
	if source == nil {
		source = NewMonotonicTimeProvider()
	}
	return &PausableClock{source: source, start: source.Now()}
}

// Now returns track time; frozen while paused
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.paused.Load() {
		return pc.start.Add(pc.pauseAt.Sub(pc.start) - pc.pausedFor)
	}
	return pc.start.Add(pc.source.Now().Sub(pc.start) - pc.pausedFor)
}

// Pause stops track time, repeated calls are no-ops
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if !pc.paused.Load() {
		pc.pauseAt = pc.source.Now()
		pc.paused.Store(true)
	}
}

// Resume restarts track time and books the pause
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.paused.Load() {
		pc.pausedFor += pc.source.Now().Sub(pc.pauseAt)
		pc.pauseAt = time.Time{}
		pc.paused.Store(false)
	}
}

func (pc *PausableClock) IsPaused() bool {
	return pc.paused.Load()
}

// TotalPauseDuration includes the current pause if any
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.pausedFor
	if pc.paused.Load() && !pc.pauseAt.IsZero() {
		total += pc.source.Now().Sub(pc.pauseAt)
	}
	return total
}
