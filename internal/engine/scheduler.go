package engine

import (
	"sync"
	"time"
)

// FrameFunc runs one frame. now is the frame timestamp.
type FrameFunc func(now time.Time)

// Scheduler runs requested frames. Each Request schedules fn once, on the
// next frame; a frame that wants a successor must request it again.
type Scheduler interface {
	Request(fn FrameFunc)

	// Stop cancels any pending frame and waits for a running one to
	// return. Requests after Stop are ignored.
	Stop()
}

// TickerScheduler runs frames from a ticker goroutine.
type TickerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	pending FrameFunc
	stopped bool

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewTickerScheduler creates a scheduler running at fps frames per second.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &TickerScheduler{
		interval: time.Second / time.Duration(fps),
		done:     make(chan struct{}),
	}
}

// Interval returns the frame interval.
func (s *TickerScheduler) Interval() time.Duration {
	return s.interval
}

// Request implements Scheduler.
func (s *TickerScheduler) Request(fn FrameFunc) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.pending = fn
	s.mu.Unlock()

	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run()
	})
}

func (s *TickerScheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			fn := s.pending
			s.pending = nil
			s.mu.Unlock()

			if fn != nil {
				fn(now)
			}
		}
	}
}

// Stop implements Scheduler.
func (s *TickerScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.pending = nil
		s.mu.Unlock()
		close(s.done)
	})
	s.wg.Wait()
}

// ManualScheduler runs frames only when advanced. It is deterministic and
// intended for tests and hosts that drive their own loop.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	pending FrameFunc
	stopped bool
}

// NewManualScheduler creates a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Request implements Scheduler.
func (s *ManualScheduler) Request(fn FrameFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.pending = fn
	}
}

// Stop implements Scheduler.
func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.pending = nil
}

// Pending reports whether a frame is waiting.
func (s *ManualScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Advance moves the clock by d and runs the pending frame, if any.
// It reports whether a frame ran.
func (s *ManualScheduler) Advance(d time.Duration) bool {
	s.mu.Lock()
	s.now = s.now.Add(d)
	now := s.now
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()

	if fn == nil {
		return false
	}
	fn(now)
	return true
}

// Run advances n frames of d each and returns how many ran.
func (s *ManualScheduler) Run(n int, d time.Duration) int {
	ran := 0
	for range n {
		if s.Advance(d) {
			ran++
		}
	}
	return ran
}
