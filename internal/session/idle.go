package session

import (
	"sync"
	"time"
)

// DefaultIdleTimeout is how long a till may sit untouched before the
// operator is signed out.
const DefaultIdleTimeout = 30 * time.Minute

// IdleWatcher calls onIdle once the watcher has not been touched for the
// configured timeout. Touch restarts the countdown. After firing it stays
// quiet until the next Touch.
type IdleWatcher struct {
	mu      sync.Mutex
	timeout time.Duration
	onIdle  func()
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewIdleWatcher creates a watcher. It does not start counting until the
// first Touch. A non-positive timeout disables it.
func NewIdleWatcher(timeout time.Duration, onIdle func()) *IdleWatcher {
	return &IdleWatcher{timeout: timeout, onIdle: onIdle}
}

// Touch records activity and restarts the countdown.
func (w *IdleWatcher) Touch() {
	if w == nil || w.timeout <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.gen++
	gen := w.gen
	w.timer = time.AfterFunc(w.timeout, func() { w.fire(gen) })
}

// Pause stops the countdown without disabling the watcher, e.g. after an
// explicit logout.
func (w *IdleWatcher) Pause() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Stop disables the watcher permanently.
func (w *IdleWatcher) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// fire runs onIdle unless the countdown it belongs to was superseded.
func (w *IdleWatcher) fire(gen uint64) {
	w.mu.Lock()
	if w.stopped || w.timer == nil || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()
	w.onIdle()
}
