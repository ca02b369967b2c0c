package visualization

import "sync"

// Scheduler runs a frame callback on the host's next animation frame.
// The simulator schedules at most one pending frame per running loop.
type Scheduler interface {
	Schedule(frame func())
}

// SchedulerFunc adapts a function to the Scheduler interface
type SchedulerFunc func(frame func())

func (f SchedulerFunc) Schedule(frame func()) {
	f(frame)
}

// ManualScheduler queues frames until the caller runs them. It drives the
// simulator in tests and headless tools.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) Schedule(frame func()) {
	m.mu.Lock()
	m.queue = append(m.queue, frame)
	m.mu.Unlock()
}

// RunNext runs the oldest queued frame. It returns false if none was queued.
func (m *ManualScheduler) RunNext() bool {
	m.mu.Lock()
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return false
	}
	frame := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()

	frame()
	return true
}

// Pending returns the number of queued frames
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Drain runs frames, including ones scheduled while draining, until the
// queue is empty or max frames have run. It returns the number run.
func (m *ManualScheduler) Drain(max int) int {
	n := 0
	for n < max && m.RunNext() {
		n++
	}
	return n
}
