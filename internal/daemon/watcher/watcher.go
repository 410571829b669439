// Package watcher watches the configuration file for external edits.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const debounceDelay = 500 * time.Millisecond

// Watcher emits an event when the config file is written, created, or
// renamed (editors commonly save via rename). Events are debounced so a
// burst of writes produces one reload.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	events    chan struct{}
	done      chan struct{}
	log       zerolog.Logger

	debounceMu sync.Mutex
	debounce   *time.Timer
}

// New creates a watcher for the given config file. The parent directory is
// watched because the file may not exist yet and atomic saves replace it.
func New(path string, log zerolog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		path:      filepath.Clean(path),
		events:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		log:       log.With().Str("component", "watcher").Logger(),
	}, nil
}

// Events returns the channel that receives debounced change events.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Start begins processing file system events in a background goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop shuts down the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	w.fsWatcher.Close()

	w.debounceMu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounceMu.Unlock()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug().Str("op", event.Op.String()).Msg("config file changed")
			w.scheduleEvent()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) scheduleEvent() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, func() {
		select {
		case w.events <- struct{}{}:
		case <-w.done:
		default:
		}
	})
}
