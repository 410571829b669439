package agent

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/hearth-io/hearth/internal/models"
)

const gib = 1024 * 1024 * 1024

// CollectorFunc gathers one metric reading.
type CollectorFunc func(ctx context.Context) (models.MetricValue, error)

// defaultCollectors maps metric keys to their production collectors.
func defaultCollectors() map[string]CollectorFunc {
	return map[string]CollectorFunc{
		"disk_free_gb":        collectDiskFree,
		"memory_used_percent": collectMemoryPercent,
		"gpu_usage_percent":   collectGPUUsage,
		"uptime_seconds":      collectUptime,
	}
}

// collectDiskFree reports remaining free space on the volume holding the
// user's home directory, falling back to the root volume.
func collectDiskFree(ctx context.Context) (models.MetricValue, error) {
	path, err := os.UserHomeDir()
	if err != nil {
		path = "/"
	}

	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		usage, err = disk.UsageWithContext(ctx, "/")
		if err != nil {
			return models.MetricValue{}, fmt.Errorf("disk usage: %w", err)
		}
	}

	freeGB := float64(usage.Free) / gib
	return models.MetricValue{
		State: fmt.Sprintf("%.2f", freeGB),
		Attributes: map[string]any{
			"unit_of_measurement": "GB",
			"icon":                "mdi:harddisk",
		},
	}, nil
}

func collectMemoryPercent(ctx context.Context) (models.MetricValue, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.MetricValue{}, fmt.Errorf("virtual memory: %w", err)
	}

	return models.MetricValue{
		State: fmt.Sprintf("%.2f", vm.UsedPercent),
		Attributes: map[string]any{
			"unit_of_measurement": "%",
			"icon":                "mdi:memory",
			"total_gb":            fmt.Sprintf("%.2f", float64(vm.Total)/gib),
			"available_gb":        fmt.Sprintf("%.2f", float64(vm.Available)/gib),
		},
	}, nil
}

// collectGPUUsage shells out to nvidia-smi. A machine without it still gets
// the sensor, reported as unavailable, so the entity exists on the hub.
func collectGPUUsage(ctx context.Context) (models.MetricValue, error) {
	attributes := map[string]any{
		"unit_of_measurement": "%",
		"icon":                "mdi:expansion-card",
	}
	unavailable := models.MetricValue{State: "unavailable", Attributes: attributes}

	out, err := exec.CommandContext(ctx,
		"nvidia-smi", "--query-gpu=utilization.gpu", "--format=csv,noheader,nounits",
	).Output()
	if err != nil {
		return unavailable, nil
	}

	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	value, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
	if err != nil {
		return unavailable, nil
	}

	return models.MetricValue{
		State:      fmt.Sprintf("%.2f", value),
		Attributes: attributes,
	}, nil
}

func collectUptime(ctx context.Context) (models.MetricValue, error) {
	seconds, err := host.UptimeWithContext(ctx)
	if err != nil {
		return models.MetricValue{}, fmt.Errorf("uptime: %w", err)
	}

	return models.MetricValue{
		State: strconv.FormatUint(seconds, 10),
		Attributes: map[string]any{
			"unit_of_measurement": "s",
			"device_class":        "duration",
			"icon":                "mdi:timer-outline",
		},
	}, nil
}
