package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestWatcherEmitsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	w, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	defer w.Stop()
	w.Start()

	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	select {
	case <-w.Events():
	case <-time.After(3 * time.Second):
		t.Fatal("no event after writing the watched file")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	w, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	defer w.Stop()
	w.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-w.Events():
	case <-time.After(3 * time.Second):
		t.Fatal("no event after burst of writes")
	}

	// The burst collapses into one debounced event.
	select {
	case <-w.Events():
		t.Error("burst produced more than one event")
	case <-time.After(debounceDelay * 2):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	w, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	defer w.Stop()
	w.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))

	select {
	case <-w.Events():
		t.Error("write to an unrelated file produced an event")
	case <-time.After(debounceDelay * 2):
	}
}
