package tray

import (
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/hearth-io/hearth/internal/models"
)

const maxEntitySlots = 16

var (
	state   AppState
	onStart func()
	onExit  func()

	// Pre-allocated entity menu slots
	entitySlots   [maxEntitySlots]*systray.MenuItem
	noEntityItem  *systray.MenuItem
	statusItem    *systray.MenuItem
	refreshItem   *systray.MenuItem
	panelItem     *systray.MenuItem
	settingsItem  *systray.MenuItem
	testNotifItem *systray.MenuItem
	quitItem      *systray.MenuItem

	// Maps slot index → entity id for toggle actions
	slotMu       sync.RWMutex
	slotEntities [maxEntitySlots]string
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (launch background services here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s AppState, theme string, onStartFn, onExitFn func()) {
	state = s
	onStart = onStartFn
	onExit = onExitFn
	icon := Icon(theme)
	systray.Run(func() { onReady(icon) }, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady(icon []byte) {
	systray.SetTemplateIcon(icon, icon)
	systray.SetTooltip("Hearth — Home Assistant")

	header := systray.AddMenuItem("Hearth", "")
	header.Disable()

	statusItem = systray.AddMenuItem("Not connected", "")
	statusItem.Disable()

	systray.AddSeparator()

	clicks := make(chan int, maxEntitySlots)
	for i := 0; i < maxEntitySlots; i++ {
		entitySlots[i] = systray.AddMenuItem("", "")
		entitySlots[i].Hide()
		go forwardClicks(entitySlots[i], i, clicks)
	}

	noEntityItem = systray.AddMenuItem("No entities configured", "")
	noEntityItem.Disable()

	systray.AddSeparator()

	refreshItem = systray.AddMenuItem("Refresh from Home Assistant", "Fetch entity states now")
	panelItem = systray.AddMenuItem("Open panel", "Open the entity panel")
	settingsItem = systray.AddMenuItem("Settings…", "Where to change Hearth settings")
	testNotifItem = systray.AddMenuItem("Send test notification", "Ask the hub to emit a test notification")
	quitItem = systray.AddMenuItem("Quit", "Shut down Hearth")

	if onStart != nil {
		onStart()
	}

	go handleClicks(clicks)
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func forwardClicks(item *systray.MenuItem, slot int, clicks chan<- int) {
	for range item.ClickedCh {
		clicks <- slot
	}
}

func handleClicks(clicks <-chan int) {
	for {
		select {
		case slot := <-clicks:
			toggleSlot(slot)

		case <-refreshItem.ClickedCh:
			if state != nil {
				state.RefreshNow()
			}

		case <-panelItem.ClickedCh:
			if state != nil {
				state.OpenPanel()
			}

		case <-settingsItem.ClickedCh:
			if state != nil {
				state.OpenSettings()
			}

		case <-testNotifItem.ClickedCh:
			if state != nil {
				state.SendTestNotification()
			}

		case <-quitItem.ClickedCh:
			if state != nil {
				state.RequestShutdown()
			}
		}
	}
}

func toggleSlot(slot int) {
	slotMu.RLock()
	entityID := slotEntities[slot]
	slotMu.RUnlock()

	if entityID == "" || state == nil {
		return
	}
	state.Toggle(entityID)
}

// UpdateEntities refreshes the entity menu items, status line, and tooltip.
// Must be called from the UI event loop.
func UpdateEntities(entities []models.EntitySnapshot, stale bool, lastRefresh time.Time) {
	slotMu.Lock()
	for i := 0; i < maxEntitySlots; i++ {
		slotEntities[i] = ""
	}
	for i, entity := range entities {
		if i >= maxEntitySlots {
			break
		}
		slotEntities[i] = entity.EntityID
	}
	slotMu.Unlock()

	for i := 0; i < maxEntitySlots; i++ {
		entitySlots[i].Hide()
	}

	if len(entities) == 0 {
		noEntityItem.Show()
	} else {
		noEntityItem.Hide()
		for i, entity := range entities {
			if i >= maxEntitySlots {
				break
			}
			entitySlots[i].SetTitle(formatEntityTitle(entity))
			entitySlots[i].Show()
		}
	}

	statusItem.SetTitle(formatStatus(stale, lastRefresh))
	systray.SetTooltip(formatTooltip(len(entities), stale))
}

// SetUnconfigured switches the menu to the not-yet-configured state.
func SetUnconfigured(configPath string) {
	statusItem.SetTitle("Not configured")
	noEntityItem.SetTitle(fmt.Sprintf("Edit %s", configPath))
	noEntityItem.Show()
	for i := 0; i < maxEntitySlots; i++ {
		entitySlots[i].Hide()
	}
}

func formatEntityTitle(entity models.EntitySnapshot) string {
	return fmt.Sprintf("%s %s", stateGlyph(entity.State), entity.FriendlyName)
}

func stateGlyph(state string) string {
	switch state {
	case "on", "open", "unlocked", "playing", "home":
		return "●"
	case "off", "closed", "locked", "paused", "not_home":
		return "○"
	case "unavailable", "unknown":
		return "◌"
	default:
		return "◆"
	}
}

func formatStatus(stale bool, lastRefresh time.Time) string {
	if lastRefresh.IsZero() {
		return "Waiting for first refresh…"
	}
	if stale {
		return fmt.Sprintf("Stale — last refresh %s", lastRefresh.Format("15:04:05"))
	}
	return fmt.Sprintf("Refreshed %s", lastRefresh.Format("15:04:05"))
}

func formatTooltip(count int, stale bool) string {
	if stale {
		return fmt.Sprintf("Hearth — %d entities (stale)", count)
	}
	return fmt.Sprintf("Hearth — %d entities", count)
}
