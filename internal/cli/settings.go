package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearth-io/hearth/internal/config"
	"github.com/hearth-io/hearth/internal/hub"
	"github.com/hearth-io/hearth/internal/logging"
	"github.com/hearth-io/hearth/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change the shared configuration",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE:  runSettingsShow,
}

var (
	setURL            string
	setToken          string
	setProxyHost      string
	setProxyPort      string
	setProxyUser      string
	setProxyPassword  string
	setAddEntities    []string
	setRemoveEntities []string
	setRefreshMinutes int
	setTheme          string
	setNotifications  string
	setAgent          string
	setAgentName      string
	setAgentMetrics   []string
	setValidate       bool
)

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update configuration values",
	Long: `Update configuration values. Only the flags you pass are changed; the
rest of the configuration is preserved. The running daemon picks up the new
file automatically.`,
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	flags := settingsSetCmd.Flags()
	flags.StringVar(&setURL, "url", "", "Hub base URL (e.g. http://homeassistant.local:8123)")
	flags.StringVar(&setToken, "token", "", "Long-lived access token")
	flags.StringVar(&setProxyHost, "proxy-host", "", "Outbound proxy host (empty string clears the proxy)")
	flags.StringVar(&setProxyPort, "proxy-port", "", "Outbound proxy port")
	flags.StringVar(&setProxyUser, "proxy-user", "", "Outbound proxy username")
	flags.StringVar(&setProxyPassword, "proxy-password", "", "Outbound proxy password")
	flags.StringSliceVar(&setAddEntities, "add-entity", nil, "Entity id to add to the tray selection (repeatable)")
	flags.StringSliceVar(&setRemoveEntities, "remove-entity", nil, "Entity id to remove from the tray selection (repeatable)")
	flags.IntVar(&setRefreshMinutes, "refresh-minutes", 0, "Entity refresh cadence in minutes (1-1440)")
	flags.StringVar(&setTheme, "theme", "", "Tray icon theme: auto, light, or dark")
	flags.StringVar(&setNotifications, "notifications", "", "Mirror hub notifications to the desktop: on or off")
	flags.StringVar(&setAgent, "agent", "", "Telemetry reporter: on or off")
	flags.StringVar(&setAgentName, "agent-name", "", "Name this machine reports its sensors under")
	flags.StringSliceVar(&setAgentMetrics, "agent-metric", nil, "Metric key to report (repeatable, replaces the current set)")
	flags.BoolVar(&setValidate, "validate", false, "Check the connection against the hub before saving")
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, _ := config.File()

	fmt.Println(styleBrand.Render("Hearth configuration"))
	fmt.Printf("  %s %s\n", styleLabel.Render("File:"), path)
	fmt.Printf("  %s %s\n", styleLabel.Render("Hub URL:"), valueOrUnset(cfg.BaseURL))
	fmt.Printf("  %s %s\n", styleLabel.Render("Token:"), maskToken(cfg.APIToken))
	if cfg.Proxy.Empty() {
		fmt.Printf("  %s %s\n", styleLabel.Render("Proxy:"), styleHint.Render("none"))
	} else {
		addr := string(cfg.Proxy.Host)
		if cfg.Proxy.Port != "" {
			addr += ":" + string(cfg.Proxy.Port)
		}
		fmt.Printf("  %s %s\n", styleLabel.Render("Proxy:"), styleValue.Render(addr))
	}
	fmt.Printf("  %s %d min\n", styleLabel.Render("Refresh:"), cfg.PanelRefreshMinutes)
	fmt.Printf("  %s %s\n", styleLabel.Render("Icon theme:"), cfg.TrayIconTheme)
	fmt.Printf("  %s %s\n", styleLabel.Render("Notifications:"), onOff(cfg.ReceiveAdminNotifications))

	if cfg.Agent.Enabled {
		fmt.Printf("  %s on (%s: %s)\n", styleLabel.Render("Agent:"),
			valueOrUnset(cfg.Agent.Name), strings.Join(cfg.Agent.Metrics, ", "))
	} else {
		fmt.Printf("  %s off\n", styleLabel.Render("Agent:"))
	}

	if len(cfg.Entities) == 0 {
		fmt.Printf("  %s %s\n", styleLabel.Render("Entities:"), styleHint.Render("none selected"))
	} else {
		fmt.Printf("  %s\n", styleLabel.Render("Entities:"))
		for _, id := range cfg.Entities {
			fmt.Printf("    %s\n", styleValue.Render(id))
		}
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	changed := false
	flags := cmd.Flags()

	if flags.Changed("url") {
		cfg.BaseURL = setURL
		changed = true
	}
	if flags.Changed("token") {
		cfg.APIToken = setToken
		changed = true
	}
	if flags.Changed("proxy-host") {
		cfg.Proxy.Host = models.Obfuscated(setProxyHost)
		if setProxyHost == "" {
			cfg.Proxy = models.ProxyConfig{}
		}
		changed = true
	}
	if flags.Changed("proxy-port") {
		cfg.Proxy.Port = models.Obfuscated(setProxyPort)
		changed = true
	}
	if flags.Changed("proxy-user") {
		cfg.Proxy.Username = models.Obfuscated(setProxyUser)
		changed = true
	}
	if flags.Changed("proxy-password") {
		cfg.Proxy.Password = models.Obfuscated(setProxyPassword)
		changed = true
	}
	for _, id := range setAddEntities {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(cfg.Entities, id) {
			cfg.Entities = append(cfg.Entities, id)
			changed = true
		}
	}
	for _, id := range setRemoveEntities {
		if idx := slices.Index(cfg.Entities, strings.TrimSpace(id)); idx >= 0 {
			cfg.Entities = slices.Delete(cfg.Entities, idx, idx+1)
			changed = true
		}
	}
	if flags.Changed("refresh-minutes") {
		if setRefreshMinutes < 1 || setRefreshMinutes > 1440 {
			return fmt.Errorf("refresh-minutes must be between 1 and 1440")
		}
		cfg.PanelRefreshMinutes = setRefreshMinutes
		changed = true
	}
	if flags.Changed("theme") {
		switch setTheme {
		case "auto", "light", "dark":
			cfg.TrayIconTheme = setTheme
		default:
			return fmt.Errorf("theme must be auto, light, or dark")
		}
		changed = true
	}
	if flags.Changed("notifications") {
		on, err := parseOnOff(setNotifications)
		if err != nil {
			return err
		}
		cfg.ReceiveAdminNotifications = on
		changed = true
	}
	if flags.Changed("agent") {
		on, err := parseOnOff(setAgent)
		if err != nil {
			return err
		}
		cfg.Agent.Enabled = on
		changed = true
	}
	if flags.Changed("agent-name") {
		cfg.Agent.Name = setAgentName
		changed = true
	}
	if flags.Changed("agent-metric") {
		for _, key := range setAgentMetrics {
			if _, ok := models.MetricOptionFor(key); !ok {
				return fmt.Errorf("unknown metric %q (available: %s)", key, strings.Join(metricKeys(), ", "))
			}
		}
		cfg.Agent.Metrics = setAgentMetrics
		changed = true
	}

	if !changed {
		fmt.Println(styleHint.Render("Nothing to change. See 'hearth settings set --help' for available flags."))
		return nil
	}

	if setValidate && cfg.Configured() {
		client, err := hub.New(cfg, logging.Nop())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Validate(ctx); err != nil {
			return fmt.Errorf("connection check failed: %w", err)
		}
		fmt.Println(styleSuccess.Render("Connection check passed."))
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Println(styleSuccess.Render("Configuration saved."))
	return nil
}

func valueOrUnset(v string) string {
	if v == "" {
		return styleHint.Render("(not set)")
	}
	return styleValue.Render(v)
}

func maskToken(token string) string {
	if token == "" {
		return styleHint.Render("(not set)")
	}
	if len(token) <= 8 {
		return styleValue.Render("********")
	}
	return styleValue.Render(token[:4] + "…" + token[len(token)-4:])
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func parseOnOff(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", v)
	}
}

func metricKeys() []string {
	keys := make([]string, 0, len(models.AgentMetricOptions))
	for _, opt := range models.AgentMetricOptions {
		keys = append(keys, opt.Key)
	}
	return keys
}
