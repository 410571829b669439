package cli

import (
	"fmt"

	"github.com/hearth-io/hearth/internal/config"
	"github.com/hearth-io/hearth/internal/hub"
	"github.com/hearth-io/hearth/internal/logging"
	"github.com/hearth-io/hearth/internal/models"
)

// loadConfig reads the shared configuration file, surfacing corruption as a
// warning rather than an error so commands still run against defaults.
func loadConfig() (*models.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println(styleWarning.Render("Warning:") + " config file unreadable, using defaults")
	}
	return cfg, nil
}

// hubClient builds a hub client from the shared configuration, with a
// friendly error when the connection is not configured yet.
func hubClient() (*hub.Client, *models.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Configured() {
		path, _ := config.File()
		return nil, nil, fmt.Errorf("hub connection not configured; run 'hearth settings set --url ... --token ...' or edit %s", path)
	}

	client, err := hub.New(cfg, logging.Nop())
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}
