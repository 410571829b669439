package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	notifyTitle   string
	notifyMessage string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Create a persistent notification on the hub",
	Long: `Create a persistent notification on the hub. With no flags a test
notification is sent; the daemon mirrors it to the desktop if admin
notifications are enabled.`,
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().StringVar(&notifyTitle, "title", "Hearth", "Notification title")
	notifyCmd.Flags().StringVarP(&notifyMessage, "message", "m", "Test notification from the Hearth CLI.", "Notification message")
}

func runNotify(cmd *cobra.Command, args []string) error {
	client, _, err := hubClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	id := "hearth_cli_" + uuid.NewString()
	if err := client.CreateNotification(ctx, notifyTitle, notifyMessage, id); err != nil {
		return err
	}

	fmt.Println(styleSuccess.Render("Notification created") + " " + styleHint.Render("("+id+")"))
	return nil
}
