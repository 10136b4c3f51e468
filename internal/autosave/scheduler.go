// Package autosave implements the debounced background-save scheduler.
// Every edit pushes the pending save out to a fresh idle window; only an
// uninterrupted quiet period fires the save callback.
package autosave

import (
	"sync"
	"time"

	"github.com/joss/promptforge/internal/logging"
)

// Debounce is the idle window after the last edit before a save fires.
const Debounce = 2000 * time.Millisecond

// Scheduler owns the single in-flight debounce timer. At most one timer is
// pending at any time; a new Touch replaces the old window rather than
// stacking a second one.
type Scheduler struct {
	mu      sync.Mutex
	clock   Clock
	fire    func()
	timer   Timer
	enabled bool
	log     *logging.Logger
}

// New creates an enabled scheduler that calls fire after each quiet window.
func New(clock Clock, fire func()) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		clock:   clock,
		fire:    fire,
		enabled: true,
		log:     logging.New("autosave"),
	}
}

// Touch restarts the debounce window. Called on every edit-buffer change.
// A disabled scheduler ignores touches entirely.
func (s *Scheduler) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	// The callback only acts while s.timer still points at its own timer.
	// A callback whose window was superseded by a later Touch neither
	// fires nor clears the replacement timer.
	var t Timer
	t = s.clock.AfterFunc(Debounce, func() {
		s.mu.Lock()
		current := s.timer == t
		if current {
			s.timer = nil
		}
		enabled := s.enabled
		s.mu.Unlock()
		if current && enabled {
			s.fire()
		}
	})
	s.timer = t
}

// SetEnabled toggles the scheduler. Disabling cancels any pending window,
// so an edit made just before the toggle is never saved by a stale timer.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled == enabled {
		return
	}
	s.enabled = enabled
	if !enabled && s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.log.Info("autosave_toggled", map[string]any{"enabled": enabled})
}

// Enabled reports the current toggle state.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Stop cancels any pending save. Used on shutdown and when the edit buffer
// is reset, so a timer from the previous session cannot fire into the new one.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
