package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-io/hearth/internal/models"
)

type fakeSource struct {
	mu            sync.Mutex
	notifications []models.Notification
	fetchErr      error
	created       []models.Notification
}

func (f *fakeSource) FetchNotifications(ctx context.Context) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]models.Notification(nil), f.notifications...), nil
}

func (f *fakeSource) CreateNotification(ctx context.Context, title, message, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := models.Notification{NotificationID: notificationID, Title: title, Message: message}
	f.created = append(f.created, n)
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeSource) set(notifications ...models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = notifications
}

type recordingSink struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingSink) Notify(title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.titles)
}

func notification(id, title string) models.Notification {
	return models.Notification{NotificationID: id, Title: title, Message: "m"}
}

func TestPollDeliversEachNotificationOnce(t *testing.T) {
	source := &fakeSource{}
	sink := &recordingSink{}
	b := New(source, sink, 0, zerolog.Nop())

	source.set(notification("backup_failed", "Backup failed"))

	fresh, err := b.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, 1, sink.count())

	// Same notification still present on the next poll: no re-delivery.
	fresh, err = b.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fresh)
	assert.Equal(t, 1, sink.count())

	// A new notification alongside the old one delivers only the new one.
	source.set(
		notification("backup_failed", "Backup failed"),
		notification("update_ready", "Update ready"),
	)
	fresh, err = b.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "update_ready", fresh[0].NotificationID)
	assert.Equal(t, 2, sink.count())
}

func TestPollPrunesDismissedIDs(t *testing.T) {
	source := &fakeSource{}
	sink := &recordingSink{}
	b := New(source, sink, 0, zerolog.Nop())

	source.set(notification("backup_failed", "Backup failed"))
	_, err := b.Poll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sink.count())

	// Dismissed on the hub.
	source.set()
	_, err = b.Poll(context.Background())
	require.NoError(t, err)

	// Re-created with the same id: it fires again.
	source.set(notification("backup_failed", "Backup failed"))
	fresh, err := b.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, 2, sink.count())
}

func TestPrimeSuppressesExistingNotifications(t *testing.T) {
	source := &fakeSource{}
	sink := &recordingSink{}
	b := New(source, sink, 0, zerolog.Nop())

	source.set(notification("old_news", "Old"))
	require.NoError(t, b.Prime(context.Background()))

	fresh, err := b.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fresh, "pre-existing notifications are not delivered")
	assert.Equal(t, 0, sink.count())
}

func TestPollSkipsBlankIDs(t *testing.T) {
	source := &fakeSource{}
	sink := &recordingSink{}
	b := New(source, sink, 0, zerolog.Nop())

	source.set(models.Notification{NotificationID: "", Title: "nameless"})
	fresh, err := b.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fresh)
	assert.Equal(t, 0, sink.count())
}

func TestPollFetchError(t *testing.T) {
	source := &fakeSource{fetchErr: errors.New("hub unreachable")}
	b := New(source, &recordingSink{}, 0, zerolog.Nop())

	_, err := b.Poll(context.Background())
	assert.Error(t, err)
}

func TestSendTestDeliversImmediately(t *testing.T) {
	source := &fakeSource{}
	sink := &recordingSink{}
	b := New(source, sink, 0, zerolog.Nop())

	require.NoError(t, b.SendTest(context.Background()))

	require.Len(t, source.created, 1)
	assert.Contains(t, source.created[0].NotificationID, "hearth_test_")
	assert.Equal(t, 1, sink.count(), "the test notification comes back through the poll path")
}
