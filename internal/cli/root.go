// Package cli implements the hearth CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hearth",
	Short: "Control your Home Assistant hub from the command line",
	Long: `Hearth mirrors a Home Assistant hub into the system tray and lets you
inspect and toggle entities. The CLI shares the daemon's configuration file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("Error:")+" "+err.Error())
	}
	return err
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(versionCmd)
}
