// Package ui provides the single-threaded event queue that marshals
// background results onto the goroutine owning tray state.
package ui

import "sync"

// Loop is a serial event queue. Background services never touch tray state
// directly; they Post closures that the loop's single consumer runs in order.
type Loop struct {
	mu     sync.Mutex
	ch     chan func()
	closed bool
}

// NewLoop creates an event loop with a bounded queue.
func NewLoop() *Loop {
	return &Loop{ch: make(chan func(), 64)}
}

// Run consumes posted events until Close. It must run on exactly one
// goroutine.
func (l *Loop) Run() {
	for fn := range l.ch {
		fn()
	}
}

// Post enqueues fn for the consumer goroutine. Events posted after Close are
// dropped; a full queue drops the event rather than blocking a background
// service behind the UI.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	select {
	case l.ch <- fn:
		return true
	default:
		return false
	}
}

// Close stops the loop once queued events drain.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.ch)
	}
}
