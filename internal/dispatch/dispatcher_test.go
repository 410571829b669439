package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-io/hearth/internal/cache"
	"github.com/hearth-io/hearth/internal/models"
)

type fakeCaller struct {
	calls []string
	err   error
	block chan struct{}
}

func (f *fakeCaller) CallService(ctx context.Context, domain, service, entityID string) error {
	f.calls = append(f.calls, domain+"."+service+" "+entityID)
	if f.block != nil {
		<-f.block
	}
	return f.err
}

func seededCache(t *testing.T, entities ...models.EntitySnapshot) *cache.Cache {
	t.Helper()
	c := cache.New(func(ctx context.Context) ([]models.EntitySnapshot, error) {
		return entities, nil
	}, nil, time.Minute, zerolog.Nop())
	require.NoError(t, c.Refresh(context.Background()))
	return c
}

func TestToggleAppliesOptimisticState(t *testing.T) {
	c := seededCache(t, models.EntitySnapshot{EntityID: "light.kitchen", State: "on"})
	caller := &fakeCaller{}
	d := New(c, caller, zerolog.Nop())

	require.NoError(t, d.Toggle(context.Background(), "light.kitchen"))

	snap, ok := c.Get("light.kitchen")
	require.True(t, ok)
	assert.Equal(t, "off", snap.State, "optimistic flip stays applied after the hub confirms")
	assert.Equal(t, []string{"light.toggle light.kitchen"}, caller.calls)
	assert.Empty(t, d.Pending(), "confirmed action leaves no pending entry")
}

func TestToggleStateVisibleBeforeConfirmation(t *testing.T) {
	c := seededCache(t, models.EntitySnapshot{EntityID: "switch.fan", State: "off"})
	caller := &fakeCaller{block: make(chan struct{})}
	d := New(c, caller, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- d.Toggle(context.Background(), "switch.fan") }()

	require.Eventually(t, func() bool {
		snap, ok := c.Get("switch.fan")
		return ok && snap.State == "on"
	}, time.Second, 5*time.Millisecond, "state must flip before the service call returns")

	assert.Len(t, d.Pending(), 1)

	close(caller.block)
	require.NoError(t, <-done)
}

func TestToggleFailureReverts(t *testing.T) {
	c := seededCache(t, models.EntitySnapshot{EntityID: "light.kitchen", State: "on"})
	caller := &fakeCaller{err: errors.New("service unavailable")}
	d := New(c, caller, zerolog.Nop())

	err := d.Toggle(context.Background(), "light.kitchen")
	require.Error(t, err)

	snap, _ := c.Get("light.kitchen")
	assert.Equal(t, "on", snap.State, "failed toggle restores the previous state")
	assert.Empty(t, d.Pending())
}

// firstFailsCaller blocks the first call until released and fails it; later
// calls succeed immediately.
type firstFailsCaller struct {
	release chan struct{}
	calls   atomic.Int32
}

func (f *firstFailsCaller) CallService(ctx context.Context, domain, service, entityID string) error {
	if f.calls.Add(1) == 1 {
		<-f.release
		return errors.New("timeout")
	}
	return nil
}

func TestSecondToggleSupersedesFailedFirst(t *testing.T) {
	c := seededCache(t, models.EntitySnapshot{EntityID: "light.kitchen", State: "on"})
	caller := &firstFailsCaller{release: make(chan struct{})}
	d := New(c, caller, zerolog.Nop())

	firstDone := make(chan error, 1)
	go func() { firstDone <- d.Toggle(context.Background(), "light.kitchen") }()

	require.Eventually(t, func() bool {
		snap, _ := c.Get("light.kitchen")
		return snap.State == "off"
	}, time.Second, 5*time.Millisecond)

	// A second toggle while the first is in flight dispatches a fresh
	// optimistic update on top of it.
	require.NoError(t, d.Toggle(context.Background(), "light.kitchen"))

	snap, _ := c.Get("light.kitchen")
	require.Equal(t, "on", snap.State)

	// The first action now fails; its revert must not clobber the newer
	// override.
	close(caller.release)
	require.Error(t, <-firstDone)

	snap, _ = c.Get("light.kitchen")
	assert.Equal(t, "on", snap.State)
}

func TestToggleUnknownEntity(t *testing.T) {
	c := seededCache(t)
	d := New(c, &fakeCaller{}, zerolog.Nop())

	err := d.Toggle(context.Background(), "light.ghost")
	assert.Error(t, err)
}

func TestServiceFor(t *testing.T) {
	tests := []struct {
		name       string
		domain     string
		state      string
		service    string
		optimistic string
	}{
		{"switch on", "switch", "on", "toggle", "off"},
		{"switch off", "switch", "off", "toggle", "on"},
		{"light unknown state", "light", "unavailable", "toggle", "on"},
		{"scene", "scene", "scening", "turn_on", "on"},
		{"script", "script", "off", "turn_on", "on"},
		{"button keeps state", "button", "2026-08-25T10:00:00+00:00", "press", "2026-08-25T10:00:00+00:00"},
		{"locked lock", "lock", "locked", "unlock", "unlocked"},
		{"unlocked lock", "lock", "unlocked", "lock", "locked"},
		{"open cover", "cover", "open", "toggle", "closed"},
		{"closed cover", "cover", "closed", "toggle", "open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, optimistic := ServiceFor(tt.domain, tt.state)
			if service != tt.service {
				t.Errorf("service = %q, want %q", service, tt.service)
			}
			if optimistic != tt.optimistic {
				t.Errorf("optimistic = %q, want %q", optimistic, tt.optimistic)
			}
		})
	}
}
