// Package models defines the data types shared across Hearth components.
package models

import (
	"sort"
	"strings"
	"time"
)

// EntitySnapshot is the cached representation of a hub entity at a single
// point in time. Snapshots are immutable once constructed; a refresh replaces
// them wholesale, never partially.
type EntitySnapshot struct {
	EntityID     string    `json:"entity_id"`
	FriendlyName string    `json:"friendly_name"`
	State        string    `json:"state"`
	Icon         string    `json:"icon,omitempty"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Domain returns the entity domain, the identifier prefix before the first dot.
func (s EntitySnapshot) Domain() string {
	domain, _, _ := strings.Cut(s.EntityID, ".")
	return domain
}

// ObjectID returns the identifier portion after the first dot.
func (s EntitySnapshot) ObjectID() string {
	_, object, _ := strings.Cut(s.EntityID, ".")
	return object
}

// SortByFriendlyName orders snapshots by lowercased friendly name, falling
// back to the entity id for ties.
func SortByFriendlyName(entities []EntitySnapshot) {
	sort.Slice(entities, func(i, j int) bool {
		a := strings.ToLower(entities[i].FriendlyName)
		b := strings.ToLower(entities[j].FriendlyName)
		if a == b {
			return entities[i].EntityID < entities[j].EntityID
		}
		return a < b
	})
}

var domainIcons = map[string]string{
	"automation":    "mdi:script-text",
	"binary_sensor": "mdi:radar",
	"button":        "mdi:gesture-tap-button",
	"climate":       "mdi:thermostat",
	"cover":         "mdi:window-shutter",
	"fan":           "mdi:fan",
	"input_boolean": "mdi:toggle-switch",
	"light":         "mdi:lightbulb",
	"lock":          "mdi:lock",
	"media_player":  "mdi:speaker",
	"scene":         "mdi:palette",
	"script":        "mdi:script-text",
	"sensor":        "mdi:eye",
	"switch":        "mdi:toggle-switch",
}

// DefaultEntityIcon is the fallback icon for domains without a mapping.
const DefaultEntityIcon = "mdi:shape"

// DomainIcon returns the fallback icon reference for an entity id's domain,
// used when the hub does not supply an icon attribute.
func DomainIcon(entityID string) string {
	domain, _, _ := strings.Cut(entityID, ".")
	if icon, ok := domainIcons[domain]; ok {
		return icon
	}
	return DefaultEntityIcon
}
