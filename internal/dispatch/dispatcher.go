// Package dispatch translates user toggle intents into hub service calls
// with optimistic cache updates.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearth-io/hearth/internal/cache"
	"github.com/hearth-io/hearth/internal/models"
)

// ServiceCaller issues a hub service call for an entity.
type ServiceCaller interface {
	CallService(ctx context.Context, domain, service, entityID string) error
}

// Dispatcher applies an optimistic state flip to the cache, issues the
// matching service call, and reverts on confirmed failure. Failed toggles
// are terminal; the user re-initiates, nothing retries automatically.
type Dispatcher struct {
	cache *cache.Cache
	hub   ServiceCaller
	log   zerolog.Logger

	mu      sync.Mutex
	pending map[string]models.PendingAction
}

// New creates a dispatcher bound to the shared cache.
func New(c *cache.Cache, hub ServiceCaller, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		cache:   c,
		hub:     hub,
		log:     log.With().Str("component", "dispatch").Logger(),
		pending: make(map[string]models.PendingAction),
	}
}

// Toggle flips the entity's state. The cached state changes immediately for
// UI responsiveness; the hub call confirms or reverts it. A second toggle on
// the same entity while one is pending dispatches a fresh optimistic update
// that overrides the earlier one.
func (d *Dispatcher) Toggle(ctx context.Context, entityID string) error {
	snap, ok := d.cache.Get(entityID)
	if !ok {
		return fmt.Errorf("entity %s is not in the cache", entityID)
	}

	domain := snap.Domain()
	service, optimistic := ServiceFor(domain, snap.State)
	token := uuid.New()

	d.cache.ApplyLocal(entityID, optimistic, token)

	d.mu.Lock()
	d.pending[entityID] = models.PendingAction{
		Token:           token,
		EntityID:        entityID,
		PreviousState:   snap.State,
		OptimisticState: optimistic,
		DispatchedAt:    time.Now(),
	}
	d.mu.Unlock()

	err := d.hub.CallService(ctx, domain, service, entityID)

	d.mu.Lock()
	if action, ok := d.pending[entityID]; ok && action.Token == token {
		delete(d.pending, entityID)
	}
	d.mu.Unlock()

	if err != nil {
		// The revert is a no-op if a newer toggle already replaced the
		// override.
		d.cache.RevertLocal(entityID, token)
		d.log.Warn().Err(err).Str("entity", entityID).Msg("toggle failed, reverted")
		return fmt.Errorf("toggle %s: %w", entityID, err)
	}

	d.log.Debug().Str("entity", entityID).Str("service", domain+"."+service).Msg("toggle confirmed")
	return nil
}

// Pending returns the in-flight actions, for display surfaces.
func (d *Dispatcher) Pending() []models.PendingAction {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.PendingAction, 0, len(d.pending))
	for _, action := range d.pending {
		out = append(out, action)
	}
	return out
}

// ServiceFor selects the hub service implementing "toggle" semantics for a
// domain, plus the optimistic state to show until the hub confirms.
func ServiceFor(domain, state string) (service, optimistic string) {
	switch domain {
	case "scene", "script":
		return "turn_on", "on"
	case "button":
		return "press", state
	case "lock":
		if state == "locked" {
			return "unlock", "unlocked"
		}
		return "lock", "locked"
	case "cover":
		if state == "open" {
			return "toggle", "closed"
		}
		return "toggle", "open"
	default:
		if state == "on" {
			return "toggle", "off"
		}
		return "toggle", "on"
	}
}
