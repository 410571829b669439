package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearth-io/hearth/internal/dispatch"
	"github.com/hearth-io/hearth/internal/models"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <entity_id>",
	Short: "Toggle an entity",
	Long: `Toggle an entity. The service is chosen by domain: switches and lights
toggle, scenes and scripts activate, buttons press, locks flip their state.`,
	Args: cobra.ExactArgs(1),
	RunE: runToggle,
}

func runToggle(cmd *cobra.Command, args []string) error {
	entityID := args[0]

	client, _, err := hubClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	entities, err := client.FetchEntities(ctx)
	if err != nil {
		return err
	}
	var snap *models.EntitySnapshot
	for i := range entities {
		if entities[i].EntityID == entityID {
			snap = &entities[i]
			break
		}
	}
	if snap == nil {
		return fmt.Errorf("entity %s not found on the hub", entityID)
	}

	domain := snap.Domain()
	service, _ := dispatch.ServiceFor(domain, snap.State)
	if err := client.CallService(ctx, domain, service, entityID); err != nil {
		return err
	}

	fmt.Printf("%s %s.%s on %s\n", styleSuccess.Render("Called"), domain, service, styleValue.Render(entityID))
	return nil
}
