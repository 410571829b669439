package models

import (
	"testing"
)

func TestEntitySnapshotDomain(t *testing.T) {
	tests := []struct {
		name     string
		entityID string
		domain   string
		objectID string
	}{
		{
			name:     "light entity",
			entityID: "light.kitchen",
			domain:   "light",
			objectID: "kitchen",
		},
		{
			name:     "object id with dots",
			entityID: "sensor.office.desk",
			domain:   "sensor",
			objectID: "office.desk",
		},
		{
			name:     "no dot",
			entityID: "garage",
			domain:   "garage",
			objectID: "",
		},
		{
			name:     "empty",
			entityID: "",
			domain:   "",
			objectID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := EntitySnapshot{EntityID: tt.entityID}
			if got := snap.Domain(); got != tt.domain {
				t.Errorf("Domain() = %q, want %q", got, tt.domain)
			}
			if got := snap.ObjectID(); got != tt.objectID {
				t.Errorf("ObjectID() = %q, want %q", got, tt.objectID)
			}
		})
	}
}

func TestSortByFriendlyName(t *testing.T) {
	entities := []EntitySnapshot{
		{EntityID: "switch.b", FriendlyName: "Porch"},
		{EntityID: "light.a", FriendlyName: "kitchen"},
		{EntityID: "light.b", FriendlyName: "Kitchen"},
		{EntityID: "lock.a", FriendlyName: "Back Door"},
	}

	SortByFriendlyName(entities)

	want := []string{"lock.a", "light.a", "light.b", "switch.b"}
	for i, id := range want {
		if entities[i].EntityID != id {
			t.Fatalf("position %d = %s, want %s", i, entities[i].EntityID, id)
		}
	}
}

func TestDomainIcon(t *testing.T) {
	tests := []struct {
		entityID string
		want     string
	}{
		{"light.kitchen", "mdi:lightbulb"},
		{"lock.front_door", "mdi:lock"},
		{"vacuum.robot", DefaultEntityIcon},
		{"", DefaultEntityIcon},
	}

	for _, tt := range tests {
		if got := DomainIcon(tt.entityID); got != tt.want {
			t.Errorf("DomainIcon(%q) = %q, want %q", tt.entityID, got, tt.want)
		}
	}
}
