package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearth-io/hearth/internal/agent"
	"github.com/hearth-io/hearth/internal/logging"
	"github.com/hearth-io/hearth/internal/models"
)

var agentPush bool

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Collect local telemetry metrics",
	Long: `Collect the metrics enabled in the agent configuration and print them.
With --push the readings are also published to the hub as sensor states, the
same way the daemon's reporter does on its timer.`,
	RunE: runAgent,
}

func init() {
	agentCmd.Flags().BoolVar(&agentPush, "push", false, "Publish the readings to the hub")
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	metrics := cfg.Agent.Metrics
	if len(metrics) == 0 {
		// One-shot collection is useful even before agent mode is enabled.
		metrics = metricKeys()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reporter := agent.New(nil, cfg.Agent.Name, metrics, 0, logging.Nop())
	if agentPush {
		client, _, err := hubClient()
		if err != nil {
			return err
		}
		reporter = agent.New(client, cfg.Agent.Name, metrics, 0, logging.Nop())
	}

	values := reporter.Collect(ctx)
	if len(values) == 0 {
		fmt.Println(styleWarning.Render("No metrics could be collected."))
		return nil
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		label := key
		if option, ok := models.MetricOptionFor(key); ok {
			label = option.Label
		}
		fmt.Printf("  %s %s\n", styleLabel.Render(label+":"), styleValue.Render(values[key].State))
	}

	if agentPush {
		if err := reporter.Publish(ctx, values); err != nil {
			return err
		}
		fmt.Println(styleSuccess.Render("Published to the hub as") + " " + styleHint.Render("sensor."+agent.Slugify(cfg.Agent.Name)+"_*"))
	}
	return nil
}
