package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hearth-io/hearth/internal/models"
)

// ErrInvalid marks configuration that could not be parsed or validated.
// Callers loading at startup treat it as non-fatal and fall back to defaults.
var ErrInvalid = errors.New("invalid configuration")

// Load reads the configuration from disk. A missing file yields defaults; a
// corrupt file yields defaults plus a wrapped ErrInvalid so the caller can
// inform the user without refusing to launch.
func Load() (*models.Config, error) {
	path, err := File()
	if err != nil {
		return models.NewConfig(), fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from the given path with the same
// degrade-to-defaults behavior as Load.
func LoadFrom(path string) (*models.Config, error) {
	cfg, err := LoadJSONOrDefault(path, models.NewConfig)
	if err != nil {
		return models.NewConfig(), fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	Normalize(cfg)
	return cfg, nil
}

// Save persists the configuration to disk atomically.
func Save(cfg *models.Config) error {
	path, err := File()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo persists the configuration to the given path atomically.
func SaveTo(path string, cfg *models.Config) error {
	Normalize(cfg)
	return SaveJSON(path, cfg)
}

// Normalize cleans a configuration in place: trimmed URL and token,
// de-duplicated entity selection preserving first occurrence, refresh
// interval clamped to its valid range, recognised icon theme.
func Normalize(cfg *models.Config) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)
	cfg.Entities = dedupe(cfg.Entities)

	if cfg.PanelRefreshMinutes < 1 || cfg.PanelRefreshMinutes > 1440 {
		cfg.PanelRefreshMinutes = 5
	}

	switch cfg.TrayIconTheme {
	case "auto", "light", "dark":
	default:
		cfg.TrayIconTheme = "auto"
	}

	if cfg.Agent.Metrics == nil {
		cfg.Agent.Metrics = []string{}
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ProxyURL builds the outbound proxy URL from the configured settings, with
// userinfo escaped. Returns nil when no proxy host is set.
func ProxyURL(p models.ProxyConfig) (*url.URL, error) {
	host := strings.TrimSpace(string(p.Host))
	if host == "" {
		return nil, nil
	}

	endpoint := host
	if port := strings.TrimSpace(string(p.Port)); port != "" {
		endpoint = endpoint + ":" + port
	}

	proxy := &url.URL{Scheme: "http", Host: endpoint}
	if username := strings.TrimSpace(string(p.Username)); username != "" {
		if password := strings.TrimSpace(string(p.Password)); password != "" {
			proxy.User = url.UserPassword(username, password)
		} else {
			proxy.User = url.User(username)
		}
	}

	if _, err := url.Parse(proxy.String()); err != nil {
		return nil, fmt.Errorf("%w: proxy settings: %v", ErrInvalid, err)
	}
	return proxy, nil
}
