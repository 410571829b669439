// Package cache keeps an in-memory snapshot of hub entities that is
// refreshed on an interval and shared by every presentation surface.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearth-io/hearth/internal/models"
)

// FetchFunc retrieves the full entity set from the hub.
type FetchFunc func(ctx context.Context) ([]models.EntitySnapshot, error)

// Event is delivered to subscribers after each completed refresh or local
// update. On refresh failure Err is set and Entities carries the retained
// previous snapshot set.
type Event struct {
	Entities []models.EntitySnapshot
	Err      error
	Stale    bool
}

// override is an optimistic local state applied by the action dispatcher.
// It masks the server snapshot until a refresh with a newer timestamp wins.
type override struct {
	state string
	token uuid.UUID
	at    time.Time
}

// refreshCall tracks one outstanding fetch so concurrent refresh requests
// can join it instead of issuing their own.
type refreshCall struct {
	done chan struct{}
	err  error
}

// Cache is the owned entity cache. Readers always observe a snapshot set
// from exactly one completed refresh; refreshes replace it atomically.
type Cache struct {
	fetch    FetchFunc
	interval time.Duration
	log      zerolog.Logger

	mu          sync.RWMutex
	byID        map[string]models.EntitySnapshot
	selection   []string
	overrides   map[string]override
	lastRefresh time.Time
	stale       bool
	ready       bool
	inflight    *refreshCall
	subscribers []func(Event)
}

// New creates an empty cache. selection defines the order List returns
// entities in; interval is the periodic refresh cadence used by Run.
func New(fetch FetchFunc, selection []string, interval time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		fetch:     fetch,
		interval:  interval,
		log:       log.With().Str("component", "cache").Logger(),
		byID:      make(map[string]models.EntitySnapshot),
		selection: append([]string(nil), selection...),
		overrides: make(map[string]override),
	}
}

// Subscribe registers a change callback. Callbacks run synchronously on the
// goroutine completing the refresh or applying the local update; subscribers
// marshal onto their own event queue.
func (c *Cache) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Refresh fetches the entity set and replaces the cache atomically. At most
// one fetch is outstanding at a time: a call arriving while one is in flight
// coalesces into it and shares its outcome. On failure the previous snapshot
// set is retained and subscribers receive a non-fatal stale event.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if call := c.inflight; call != nil {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call
	c.mu.Unlock()

	entities, err := c.fetch(ctx)

	var event Event
	c.mu.Lock()
	if err == nil {
		byID := make(map[string]models.EntitySnapshot, len(entities))
		for _, entity := range entities {
			byID[entity.EntityID] = entity
		}
		c.byID = byID
		c.reconcileOverridesLocked()
		c.lastRefresh = time.Now()
		c.stale = false
		c.ready = true
		event = Event{Entities: c.listLocked()}
	} else {
		c.stale = true
		event = Event{Entities: c.listLocked(), Err: err, Stale: true}
	}
	subscribers := append(([]func(Event))(nil), c.subscribers...)
	c.inflight = nil
	call.err = err
	c.mu.Unlock()

	close(call.done)
	for _, fn := range subscribers {
		fn(event)
	}
	return err
}

// reconcileOverridesLocked resolves optimistic overrides against a freshly
// fetched snapshot set. The later-timestamped update wins: an override newer
// than the server's last_updated stays applied, otherwise it is dropped.
func (c *Cache) reconcileOverridesLocked() {
	for id, ov := range c.overrides {
		snap, ok := c.byID[id]
		if !ok || snap.LastUpdated.After(ov.at) {
			delete(c.overrides, id)
		}
	}
}

// Get returns the snapshot for one entity, with any optimistic override
// applied.
func (c *Cache) Get(id string) (models.EntitySnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.byID[id]
	if !ok {
		return models.EntitySnapshot{}, false
	}
	return c.composeLocked(snap), true
}

// List returns snapshots for the configured selection, in selection order.
// Selected entities the hub has not reported yet appear as placeholders so
// the menu layout stays stable.
func (c *Cache) List() []models.EntitySnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listLocked()
}

func (c *Cache) listLocked() []models.EntitySnapshot {
	out := make([]models.EntitySnapshot, 0, len(c.selection))
	for _, id := range c.selection {
		snap, ok := c.byID[id]
		if !ok {
			out = append(out, models.EntitySnapshot{
				EntityID:     id,
				FriendlyName: id,
				State:        "unknown",
				Icon:         models.DomainIcon(id),
			})
			continue
		}
		out = append(out, c.composeLocked(snap))
	}
	return out
}

// All returns every cached entity sorted by friendly name, for the panel's
// search surface and the CLI listing.
func (c *Cache) All() []models.EntitySnapshot {
	c.mu.RLock()
	out := make([]models.EntitySnapshot, 0, len(c.byID))
	for _, snap := range c.byID {
		out = append(out, c.composeLocked(snap))
	}
	c.mu.RUnlock()

	models.SortByFriendlyName(out)
	return out
}

func (c *Cache) composeLocked(snap models.EntitySnapshot) models.EntitySnapshot {
	if ov, ok := c.overrides[snap.EntityID]; ok {
		snap.State = ov.state
		snap.LastUpdated = ov.at
	}
	return snap
}

// ApplyLocal records an optimistic state for an entity and notifies
// subscribers immediately. The token identifies the action so a revert
// cannot clobber a newer optimistic update for the same entity.
func (c *Cache) ApplyLocal(id, state string, token uuid.UUID) {
	c.mu.Lock()
	c.overrides[id] = override{state: state, token: token, at: time.Now()}
	event := Event{Entities: c.listLocked(), Stale: c.stale}
	subscribers := append(([]func(Event))(nil), c.subscribers...)
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(event)
	}
}

// RevertLocal removes the optimistic override identified by token, restoring
// the last server-confirmed state. A newer override for the same entity is
// left untouched.
func (c *Cache) RevertLocal(id string, token uuid.UUID) {
	c.mu.Lock()
	ov, ok := c.overrides[id]
	if !ok || ov.token != token {
		c.mu.Unlock()
		return
	}
	delete(c.overrides, id)
	event := Event{Entities: c.listLocked(), Stale: c.stale}
	subscribers := append(([]func(Event))(nil), c.subscribers...)
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(event)
	}
}

// SetSelection replaces the configured entity order, for settings changes.
func (c *Cache) SetSelection(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = append([]string(nil), ids...)
}

// Ready reports whether at least one refresh has completed successfully.
func (c *Cache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Stale reports whether the most recent refresh attempt failed.
func (c *Cache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

// LastRefresh returns the completion time of the last successful refresh.
func (c *Cache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh
}

// Run refreshes immediately and then on the configured interval until ctx is
// cancelled. Failures are logged and surfaced through subscriber events; they
// never stop the loop.
func (c *Cache) Run(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.log.Warn().Err(err).Msg("initial refresh failed")
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.log.Warn().Err(err).Msg("refresh failed, serving stale snapshot")
			}
		}
	}
}
