package ui

import (
	"testing"
	"time"
)

func TestLoopRunsEventsInOrder(t *testing.T) {
	l := NewLoop()

	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		if !l.Post(func() { order = append(order, i) }) {
			t.Fatalf("Post(%d) dropped", i)
		}
	}
	l.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not drain after Close")
	}

	for i, got := range order {
		if got != i {
			t.Fatalf("order[%d] = %d, want %d", i, got, i)
		}
	}
}

func TestPostAfterCloseIsDropped(t *testing.T) {
	l := NewLoop()
	l.Close()

	if l.Post(func() {}) {
		t.Error("Post after Close should report dropped")
	}
}

func TestPostOnFullQueueDoesNotBlock(t *testing.T) {
	l := NewLoop()
	// No consumer: fill the queue to capacity.
	for l.Post(func() {}) {
	}

	done := make(chan bool, 1)
	go func() { done <- l.Post(func() {}) }()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("Post on a full queue should report dropped")
		}
	case <-time.After(time.Second):
		t.Fatal("Post blocked on a full queue")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	l := NewLoop()
	l.Close()
	l.Close()
}
