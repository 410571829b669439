// Package daemon wires the cache, dispatcher, notification bridge, agent
// reporter, and presentation surfaces into the running application.
package daemon

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hearth-io/hearth/internal/agent"
	"github.com/hearth-io/hearth/internal/cache"
	"github.com/hearth-io/hearth/internal/config"
	"github.com/hearth-io/hearth/internal/daemon/panel"
	"github.com/hearth-io/hearth/internal/daemon/tray"
	"github.com/hearth-io/hearth/internal/daemon/ui"
	"github.com/hearth-io/hearth/internal/daemon/watcher"
	"github.com/hearth-io/hearth/internal/dispatch"
	"github.com/hearth-io/hearth/internal/hub"
	"github.com/hearth-io/hearth/internal/models"
	"github.com/hearth-io/hearth/internal/notify"
)

const authNoticeCooldown = 10 * time.Minute

// App owns the background services and marshals their results onto the UI
// event loop. It implements tray.AppState and the panel's interfaces so both
// surfaces read the same cache.
type App struct {
	log       zerolog.Logger
	panelAddr string
	sink      notify.Sink
	loop      *ui.Loop
	hasTray   bool

	rootCtx    context.Context
	rootCancel context.CancelFunc

	mu         sync.RWMutex
	cfg        *models.Config
	client     *hub.Client
	entities   *cache.Cache
	dispatcher *dispatch.Dispatcher
	bridge     *notify.Bridge
	reporter   *agent.Reporter
	svcCancel  context.CancelFunc
	svcWG      sync.WaitGroup

	panel   *panel.Panel
	watch   *watcher.Watcher
	stopped sync.Once

	lastAuthNotice time.Time
}

// New creates the application around a loaded configuration.
func New(cfg *models.Config, panelAddr string, hasTray bool, log zerolog.Logger) *App {
	rootCtx, rootCancel := context.WithCancel(context.Background())
	return &App{
		log:        log.With().Str("component", "daemon").Logger(),
		panelAddr:  panelAddr,
		sink:       notify.NewDesktopSink(),
		loop:       ui.NewLoop(),
		hasTray:    hasTray,
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
		cfg:        cfg,
	}
}

// Start launches the UI loop, panel server, config watcher, and the
// background services for the current configuration.
func (a *App) Start() error {
	go a.loop.Run()

	a.panel = panel.New(a, panelToggler{a}, a, a.panelAddr, a.log)
	go func() {
		if err := a.panel.Start(a.rootCtx); err != nil {
			a.log.Error().Err(err).Msg("panel server failed")
		}
	}()

	if path, err := config.File(); err == nil {
		w, err := watcher.New(path, a.log)
		if err != nil {
			a.log.Warn().Err(err).Msg("config watch unavailable")
		} else {
			a.watch = w
			a.watch.Start()
			go a.watchConfig()
		}
	}

	a.mu.RLock()
	cfg := a.cfg
	a.mu.RUnlock()
	a.startServices(cfg)
	return nil
}

// Stop cancels all timers and background services before the event loop is
// released, so no callback touches torn-down state.
func (a *App) Stop() {
	a.stopped.Do(func() {
		a.stopServices()
		if a.watch != nil {
			a.watch.Stop()
		}
		a.rootCancel()
		a.loop.Close()
	})
}

// Reload re-reads the configuration and applies it.
func (a *App) Reload() {
	cfg, err := config.Load()
	if err != nil {
		a.log.Warn().Err(err).Msg("config reload failed, keeping defaults")
	}
	a.applyConfig(cfg)
}

// applyConfig swaps in a new configuration. When only the entity selection
// changed the running cache is updated in place; anything touching the
// connection, timers, or optional services rebuilds them.
func (a *App) applyConfig(cfg *models.Config) {
	a.mu.Lock()
	prev := a.cfg
	a.cfg = cfg
	entities := a.entities
	a.mu.Unlock()

	if entities != nil && selectionOnlyChange(prev, cfg) {
		a.log.Info().Msg("entity selection changed, updating in place")
		entities.SetSelection(cfg.Entities)
		go func() {
			_ = entities.Refresh(a.rootCtx)
		}()
		return
	}

	a.log.Info().Msg("configuration changed, restarting services")
	a.stopServices()
	a.startServices(cfg)
}

// selectionOnlyChange reports whether next differs from prev in the entity
// selection alone.
func selectionOnlyChange(prev, next *models.Config) bool {
	if prev == nil || next == nil || !next.Configured() {
		return false
	}
	return prev.BaseURL == next.BaseURL &&
		prev.APIToken == next.APIToken &&
		prev.Proxy == next.Proxy &&
		prev.PanelRefreshMinutes == next.PanelRefreshMinutes &&
		prev.TrayIconTheme == next.TrayIconTheme &&
		prev.ReceiveAdminNotifications == next.ReceiveAdminNotifications &&
		prev.Agent.Enabled == next.Agent.Enabled &&
		prev.Agent.Name == next.Agent.Name &&
		slices.Equal(prev.Agent.Metrics, next.Agent.Metrics)
}

func (a *App) watchConfig() {
	for {
		select {
		case <-a.rootCtx.Done():
			return
		case _, ok := <-a.watch.Events():
			if !ok {
				return
			}
			a.Reload()
		}
	}
}

func (a *App) startServices(cfg *models.Config) {
	if !cfg.Configured() {
		a.log.Info().Msg("hub connection not configured")
		if a.hasTray {
			path, _ := config.File()
			a.loop.Post(func() { tray.SetUnconfigured(path) })
		}
		return
	}

	client, err := hub.New(cfg, a.log)
	if err != nil {
		a.log.Error().Err(err).Msg("hub client unavailable")
		return
	}

	entities := cache.New(client.FetchEntities, cfg.Entities, cfg.RefreshInterval(), a.log)
	entities.Subscribe(a.onCacheEvent)
	dispatcher := dispatch.New(entities, client, a.log)

	var bridge *notify.Bridge
	if cfg.ReceiveAdminNotifications {
		bridge = notify.New(client, a.sink, notify.DefaultPollInterval, a.log)
	}

	var reporter *agent.Reporter
	if cfg.Agent.Enabled {
		reporter = agent.New(client, cfg.Agent.Name, cfg.Agent.Metrics, agent.DefaultReportInterval, a.log)
	}

	svcCtx, svcCancel := context.WithCancel(a.rootCtx)

	a.mu.Lock()
	a.client = client
	a.entities = entities
	a.dispatcher = dispatcher
	a.bridge = bridge
	a.reporter = reporter
	a.svcCancel = svcCancel
	a.mu.Unlock()

	a.runService(func() { entities.Run(svcCtx) })
	if bridge != nil {
		a.runService(func() { bridge.Run(svcCtx) })
	}
	if reporter != nil {
		a.runService(func() { reporter.Run(svcCtx) })
	}
}

func (a *App) runService(fn func()) {
	a.svcWG.Add(1)
	go func() {
		defer a.svcWG.Done()
		fn()
	}()
}

func (a *App) stopServices() {
	a.mu.Lock()
	cancel := a.svcCancel
	a.svcCancel = nil
	a.client = nil
	a.entities = nil
	a.dispatcher = nil
	a.bridge = nil
	a.reporter = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	a.svcWG.Wait()
}

// onCacheEvent runs on whichever goroutine completed the refresh; it posts
// the tray update onto the UI loop and surfaces auth failures once per
// cooldown window.
func (a *App) onCacheEvent(event cache.Event) {
	if a.hasTray {
		last := a.LastRefresh()
		a.loop.Post(func() {
			tray.UpdateEntities(event.Entities, event.Stale, last)
		})
	}

	if event.Err == nil {
		return
	}
	if hub.IsAuth(event.Err) {
		a.mu.Lock()
		fire := time.Since(a.lastAuthNotice) > authNoticeCooldown
		if fire {
			a.lastAuthNotice = time.Now()
		}
		a.mu.Unlock()
		if fire {
			_ = a.sink.Notify("Hearth", "The hub rejected your access token. Update it in settings.")
		}
	}
}

// --- tray.AppState ---

// Entities returns the selected entity snapshots for the tray menu.
func (a *App) Entities() []models.EntitySnapshot {
	return a.List()
}

// Configured reports whether hub connection settings exist.
func (a *App) Configured() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.Configured()
}

// Toggle dispatches a toggle off the UI thread; failures surface as desktop
// notifications.
func (a *App) Toggle(entityID string) {
	a.mu.RLock()
	dispatcher := a.dispatcher
	a.mu.RUnlock()
	if dispatcher == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(a.rootCtx, 15*time.Second)
		defer cancel()
		if err := dispatcher.Toggle(ctx, entityID); err != nil {
			_ = a.sink.Notify("Hearth", "Toggle failed: "+err.Error())
		}
	}()
}

// RefreshNow triggers an explicit refresh off the UI thread.
func (a *App) RefreshNow() {
	a.mu.RLock()
	entities := a.entities
	a.mu.RUnlock()
	if entities == nil {
		return
	}
	go func() {
		_ = entities.Refresh(a.rootCtx)
	}()
}

// OpenPanel opens the floating panel in the default browser.
func (a *App) OpenPanel() {
	if err := panel.OpenBrowser(a.panel.URL()); err != nil {
		a.log.Warn().Err(err).Msg("could not open panel")
	}
}

// OpenSettings points the user at the configuration surface.
func (a *App) OpenSettings() {
	path, err := config.File()
	if err != nil {
		a.log.Warn().Err(err).Msg("config path unavailable")
		return
	}
	_ = a.sink.Notify("Hearth", "Settings live in "+path+". Edit the file or run 'hearth settings'.")
}

// SendTestNotification asks the hub for a test notification.
func (a *App) SendTestNotification() {
	a.mu.RLock()
	bridge := a.bridge
	a.mu.RUnlock()
	if bridge == nil {
		_ = a.sink.Notify("Hearth", "Admin notifications are disabled in settings.")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(a.rootCtx, 15*time.Second)
		defer cancel()
		if err := bridge.SendTest(ctx); err != nil {
			_ = a.sink.Notify("Hearth", "Test notification failed: "+err.Error())
		}
	}()
}

// RequestShutdown stops services and releases the tray.
func (a *App) RequestShutdown() {
	go func() {
		a.Stop()
		if a.hasTray {
			tray.Quit()
		}
	}()
}

// --- panel.CacheReader / panel.Toggler / panel.Refresher ---

// List returns the selected entities in configured order.
func (a *App) List() []models.EntitySnapshot {
	a.mu.RLock()
	entities := a.entities
	a.mu.RUnlock()
	if entities == nil {
		return []models.EntitySnapshot{}
	}
	return entities.List()
}

// All returns every cached entity sorted by friendly name.
func (a *App) All() []models.EntitySnapshot {
	a.mu.RLock()
	entities := a.entities
	a.mu.RUnlock()
	if entities == nil {
		return []models.EntitySnapshot{}
	}
	return entities.All()
}

// Ready reports whether the cache holds a completed refresh.
func (a *App) Ready() bool {
	a.mu.RLock()
	entities := a.entities
	a.mu.RUnlock()
	return entities != nil && entities.Ready()
}

// Stale reports whether the latest refresh attempt failed.
func (a *App) Stale() bool {
	a.mu.RLock()
	entities := a.entities
	a.mu.RUnlock()
	return entities != nil && entities.Stale()
}

// LastRefresh returns the completion time of the last successful refresh.
func (a *App) LastRefresh() time.Time {
	a.mu.RLock()
	entities := a.entities
	a.mu.RUnlock()
	if entities == nil {
		return time.Time{}
	}
	return entities.LastRefresh()
}

// Refresh triggers a coalesced cache refresh.
func (a *App) Refresh(ctx context.Context) error {
	a.mu.RLock()
	entities := a.entities
	a.mu.RUnlock()
	if entities == nil {
		return hub.ErrNotConfigured
	}
	return entities.Refresh(ctx)
}

// panelToggler adapts App to panel.Toggler; the tray's Toggle has a
// different signature, so the panel variant lives behind an adapter.
type panelToggler struct {
	app *App
}

func (t panelToggler) Toggle(ctx context.Context, entityID string) error {
	t.app.mu.RLock()
	dispatcher := t.app.dispatcher
	t.app.mu.RUnlock()
	if dispatcher == nil {
		return hub.ErrNotConfigured
	}
	return dispatcher.Toggle(ctx, entityID)
}
