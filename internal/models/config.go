package models

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Obfuscated is a string stored base64-encoded on disk. This is a reversible
// encoding, not encryption: it keeps proxy credentials out of casual sight in
// config.json and nothing more. The on-disk format is kept deliberately so
// older configurations remain readable.
type Obfuscated string

// MarshalJSON encodes the value as base64. Empty values stay empty.
func (o Obfuscated) MarshalJSON() ([]byte, error) {
	if o == "" {
		return []byte(`""`), nil
	}
	return json.Marshal(base64.StdEncoding.EncodeToString([]byte(o)))
}

// UnmarshalJSON decodes a base64 value. Undecodable input becomes empty
// rather than failing the whole config load.
func (o *Obfuscated) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*o = ""
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		*o = ""
		return nil
	}
	*o = Obfuscated(decoded)
	return nil
}

// ProxyConfig holds outbound HTTP proxy settings. All fields are obfuscated
// at rest.
type ProxyConfig struct {
	Host     Obfuscated `json:"host"`
	Port     Obfuscated `json:"port"`
	Username Obfuscated `json:"username"`
	Password Obfuscated `json:"password"`
}

// Empty reports whether no proxy host is configured.
func (p ProxyConfig) Empty() bool {
	return p.Host == ""
}

// AgentConfig holds the optional telemetry reporter settings.
type AgentConfig struct {
	Enabled bool     `json:"enabled"`
	Name    string   `json:"name"`
	Metrics []string `json:"metrics"`
}

// Config represents the persisted application configuration.
// This corresponds to config.json in the per-user config directory.
type Config struct {
	BaseURL                   string      `json:"base_url"`
	APIToken                  string      `json:"api_token"`
	Entities                  []string    `json:"entities"`
	Proxy                     ProxyConfig `json:"proxy"`
	PanelRefreshMinutes       int         `json:"panel_refresh_minutes"`
	TrayIconTheme             string      `json:"tray_icon_theme"`
	ReceiveAdminNotifications bool        `json:"receive_admin_notifications"`
	Agent                     AgentConfig `json:"agent"`
}

// NewConfig creates a configuration with default values.
func NewConfig() *Config {
	return &Config{
		Entities:            []string{},
		PanelRefreshMinutes: 5,
		TrayIconTheme:       "auto",
		Agent: AgentConfig{
			Metrics: []string{},
		},
	}
}

// Configured reports whether the hub connection settings are usable.
func (c *Config) Configured() bool {
	return c.BaseURL != "" && c.APIToken != ""
}

// RefreshInterval returns the entity refresh cadence. Out-of-range values
// fall back to the default of five minutes.
func (c *Config) RefreshInterval() time.Duration {
	minutes := c.PanelRefreshMinutes
	if minutes < 1 || minutes > 1440 {
		minutes = 5
	}
	return time.Duration(minutes) * time.Minute
}
