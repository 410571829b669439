package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearth-io/hearth/internal/models"
)

var entitiesAll bool

var entitiesCmd = &cobra.Command{
	Use:     "entities",
	Aliases: []string{"ls"},
	Short:   "List entities from the hub",
	Long: `List entities from the hub. By default only the entities selected for
the tray are shown; --all lists everything the hub exposes.`,
	RunE: runEntities,
}

func init() {
	entitiesCmd.Flags().BoolVarP(&entitiesAll, "all", "a", false, "List every entity, not just the tray selection")
}

func runEntities(cmd *cobra.Command, args []string) error {
	client, cfg, err := hubClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	entities, err := client.FetchEntities(ctx)
	if err != nil {
		return err
	}

	selected := make(map[string]bool, len(cfg.Entities))
	for _, id := range cfg.Entities {
		selected[id] = true
	}

	var rows []models.EntitySnapshot
	for _, entity := range entities {
		if entitiesAll || selected[entity.EntityID] {
			rows = append(rows, entity)
		}
	}
	models.SortByFriendlyName(rows)

	if len(rows) == 0 {
		if entitiesAll {
			fmt.Println(styleHint.Render("The hub returned no entities."))
		} else {
			fmt.Println(styleHint.Render("No entities selected. Add one with 'hearth settings set --add-entity <id>' or use --all."))
		}
		return nil
	}

	width := 0
	for _, entity := range rows {
		if len(entity.FriendlyName) > width {
			width = len(entity.FriendlyName)
		}
	}
	for _, entity := range rows {
		marker := " "
		if selected[entity.EntityID] {
			marker = styleSuccess.Render("*")
		}
		padding := strings.Repeat(" ", width-len(entity.FriendlyName))
		fmt.Printf("%s %s%s  %s  %s\n", marker,
			styleValue.Render(entity.FriendlyName), padding,
			stateBadge(entity.State),
			styleHint.Render(entity.EntityID))
	}
	return nil
}
