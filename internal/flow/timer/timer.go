// Package timer runs the delayed auto-advance of Splash and Welcome. A task
// belongs to one screen instance and is cancelled when that screen is left.
package timer

import (
	"sync"
	"time"
)

// AfterFunc matches time.AfterFunc; tests swap in a manual clock.
type AfterFunc func(d time.Duration, f func()) Stopper

// Stopper is the part of *time.Timer a Task needs.
type Stopper interface {
	Stop() bool
}

// Scheduler hands out cancellable delayed tasks.
type Scheduler struct {
	afterFunc AfterFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithAfterFunc replaces the wall-clock timer source.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		afterFunc: func(d time.Duration, f func()) Stopper {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Task is a scheduled call. After Cancel returns, fn will not start.
type Task struct {
	mu        sync.Mutex
	cancelled bool
	fired     bool
	stopper   Stopper
}

// Schedule runs fn once after delay unless the task is cancelled first.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) *Task {
	t := &Task{}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopper = s.afterFunc(delay, func() {
		t.mu.Lock()
		if t.cancelled || t.fired {
			t.mu.Unlock()
			return
		}
		t.fired = true
		t.mu.Unlock()
		fn()
	})
	return t
}

// Cancel stops the task. It reports true if fn had not run yet.
func (t *Task) Cancel() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	if t.stopper != nil {
		t.stopper.Stop()
	}
	return true
}

// Fired reports whether fn was started.
func (t *Task) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}
