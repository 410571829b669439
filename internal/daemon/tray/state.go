// Package tray implements the system tray icon and menu.
package tray

import "github.com/hearth-io/hearth/internal/models"

// AppState provides the tray's view of the application and forwards user
// intent back to it.
type AppState interface {
	Entities() []models.EntitySnapshot
	Stale() bool
	Configured() bool
	Toggle(entityID string)
	RefreshNow()
	OpenPanel()
	OpenSettings()
	SendTestNotification()
	RequestShutdown()
}
