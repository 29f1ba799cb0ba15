package component

import "sync"

// ScrollLock is a counted lock over the page scroll state. Each open overlay
// acquires it; scrolling stays locked until every holder has released. The
// count never goes below zero.
type ScrollLock struct {
	mu    sync.Mutex
	depth int
}

// NewScrollLock creates an unlocked scroll lock.
func NewScrollLock() *ScrollLock {
	return &ScrollLock{}
}

// Acquire increments the lock count.
func (s *ScrollLock) Acquire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depth++
}

// Release decrements the lock count, clamping at zero.
func (s *ScrollLock) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.depth > 0 {
		s.depth--
	}
}

// Locked reports whether any holder still has the lock.
func (s *ScrollLock) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth > 0
}

// Depth returns the current hold count.
func (s *ScrollLock) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth
}

// Reset force-unlocks, dropping all holders. Used on page teardown.
func (s *ScrollLock) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depth = 0
}
