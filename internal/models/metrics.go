package models

// MetricOption describes a local metric that can be reported to the hub as a
// sensor when agent mode is enabled.
type MetricOption struct {
	Key         string
	Label       string
	Description string
}

// MetricValue is one collected metric reading. Attributes follow the hub's
// sensor attribute conventions (unit_of_measurement, icon, ...).
type MetricValue struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// AgentMetricOptions lists the metrics the agent reporter knows how to collect.
var AgentMetricOptions = []MetricOption{
	{
		Key:         "disk_free_gb",
		Label:       "Available disk space (GB)",
		Description: "Remaining free space on the system volume in gigabytes.",
	},
	{
		Key:         "memory_used_percent",
		Label:       "Memory usage (%)",
		Description: "Percentage of physical memory currently in use on this machine.",
	},
	{
		Key:         "gpu_usage_percent",
		Label:       "GPU load (%)",
		Description: "Approximate GPU utilization gathered from available system tools.",
	},
	{
		Key:         "uptime_seconds",
		Label:       "System uptime (seconds)",
		Description: "Seconds elapsed since the operating system booted.",
	},
}

// MetricOptionFor returns the option for the given key, if it exists.
func MetricOptionFor(key string) (MetricOption, bool) {
	for _, option := range AgentMetricOptions {
		if option.Key == key {
			return option, true
		}
	}
	return MetricOption{}, false
}
