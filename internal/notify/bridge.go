// Package notify polls the hub for admin notifications and surfaces new
// ones as desktop notifications.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearth-io/hearth/internal/models"
)

// DefaultPollInterval is the notification poll cadence, independent of the
// entity refresh interval.
const DefaultPollInterval = 30 * time.Second

// Source lists and creates hub admin notifications.
type Source interface {
	FetchNotifications(ctx context.Context) ([]models.Notification, error)
	CreateNotification(ctx context.Context, title, message, notificationID string) error
}

// Bridge de-duplicates hub notifications by their stable identifier so the
// same server-side notification is never shown twice, and prunes its memory
// to the ids the hub still reports so a dismissed-and-recreated notification
// fires again.
type Bridge struct {
	source   Source
	sink     Sink
	interval time.Duration
	log      zerolog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates a bridge. A zero interval selects DefaultPollInterval.
func New(source Source, sink Sink, interval time.Duration, log zerolog.Logger) *Bridge {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Bridge{
		source:   source,
		sink:     sink,
		interval: interval,
		log:      log.With().Str("component", "notify").Logger(),
		seen:     make(map[string]struct{}),
	}
}

// Prime marks the hub's current notifications as already seen without
// delivering them, so only notifications created after startup are shown.
func (b *Bridge) Prime(ctx context.Context) error {
	notifications, err := b.source.FetchNotifications(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.seen = make(map[string]struct{}, len(notifications))
	for _, n := range notifications {
		if n.NotificationID != "" {
			b.seen[n.NotificationID] = struct{}{}
		}
	}
	return nil
}

// Poll fetches the current notifications, delivers the unseen ones through
// the sink, and returns them.
func (b *Bridge) Poll(ctx context.Context) ([]models.Notification, error) {
	notifications, err := b.source.FetchNotifications(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	current := make(map[string]struct{}, len(notifications))
	var fresh []models.Notification
	for _, n := range notifications {
		if n.NotificationID == "" {
			continue
		}
		current[n.NotificationID] = struct{}{}
		if _, ok := b.seen[n.NotificationID]; ok {
			continue
		}
		b.seen[n.NotificationID] = struct{}{}
		fresh = append(fresh, n)
	}
	// Forget ids the hub no longer reports.
	for id := range b.seen {
		if _, ok := current[id]; !ok {
			delete(b.seen, id)
		}
	}
	b.mu.Unlock()

	for _, n := range fresh {
		if err := b.sink.Notify(n.Title, n.Message); err != nil {
			b.log.Warn().Err(err).Str("id", n.NotificationID).Msg("desktop notification failed")
		}
	}
	return fresh, nil
}

// SendTest asks the hub to emit a test notification and polls immediately so
// it shows up without waiting for the next timer tick.
func (b *Bridge) SendTest(ctx context.Context) error {
	id := "hearth_test_" + uuid.NewString()
	message := fmt.Sprintf("Test notification sent at %s.", time.Now().Format("15:04:05"))
	if err := b.source.CreateNotification(ctx, "Hearth", message, id); err != nil {
		return err
	}

	_, err := b.Poll(ctx)
	return err
}

// Run primes the seen set and polls on the bridge's own timer until ctx is
// cancelled.
func (b *Bridge) Run(ctx context.Context) {
	if err := b.Prime(ctx); err != nil {
		b.log.Warn().Err(err).Msg("priming notifications failed")
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Poll(ctx); err != nil {
				b.log.Warn().Err(err).Msg("notification poll failed")
			}
		}
	}
}
