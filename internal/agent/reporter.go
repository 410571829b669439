// Package agent collects local machine telemetry and reports it to the hub
// as sensor states. The whole feature is optional and off by default.
package agent

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hearth-io/hearth/internal/models"
)

// DefaultReportInterval is the telemetry publish cadence.
const DefaultReportInterval = time.Minute

// Publisher pushes one sensor reading to the hub.
type Publisher interface {
	PushSensorState(ctx context.Context, entityID, state string, attributes map[string]any) error
}

// Reporter collects the enabled metrics on a timer and publishes them. Each
// metric is collected independently: one failing collector omits that metric
// for the cycle, never the whole payload.
type Reporter struct {
	publisher  Publisher
	slug       string
	enabled    []string
	interval   time.Duration
	collectors map[string]CollectorFunc
	log        zerolog.Logger
}

// New creates a reporter for the given agent name and enabled metric keys.
// A zero interval selects DefaultReportInterval.
func New(publisher Publisher, name string, enabled []string, interval time.Duration, log zerolog.Logger) *Reporter {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	return &Reporter{
		publisher:  publisher,
		slug:       Slugify(name),
		enabled:    append([]string(nil), enabled...),
		interval:   interval,
		collectors: defaultCollectors(),
		log:        log.With().Str("component", "agent").Logger(),
	}
}

// Collect gathers every enabled metric. Collector failures are logged and
// the metric omitted; the returned map holds the readings that succeeded.
func (r *Reporter) Collect(ctx context.Context) map[string]models.MetricValue {
	collected := make(map[string]models.MetricValue, len(r.enabled))
	for _, key := range r.enabled {
		collector, ok := r.collectors[key]
		if !ok {
			continue
		}
		value, err := collector(ctx)
		if err != nil {
			r.log.Warn().Err(err).Str("metric", key).Msg("metric collection failed, omitting")
			continue
		}
		collected[key] = value
	}
	return collected
}

// Publish pushes each collected reading as sensor.{agent}_{metric}. Per-
// sensor push failures are logged; Publish fails only when nothing could be
// pushed at all.
func (r *Reporter) Publish(ctx context.Context, values map[string]models.MetricValue) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var pushed int
	var lastErr error
	for _, key := range keys {
		value := values[key]
		entityID := r.SensorID(key)
		attributes := value.Attributes
		if option, ok := models.MetricOptionFor(key); ok {
			if attributes == nil {
				attributes = map[string]any{}
			}
			if _, ok := attributes["friendly_name"]; !ok {
				attributes["friendly_name"] = option.Label
			}
		}
		if err := r.publisher.PushSensorState(ctx, entityID, value.State, attributes); err != nil {
			r.log.Warn().Err(err).Str("sensor", entityID).Msg("sensor push failed")
			lastErr = err
			continue
		}
		pushed++
	}

	if pushed == 0 && lastErr != nil {
		return fmt.Errorf("publishing telemetry: %w", lastErr)
	}
	return nil
}

// SensorID returns the hub entity id used for a metric key.
func (r *Reporter) SensorID(key string) string {
	return "sensor." + r.slug + "_" + key
}

// Run collects and publishes on the reporter's timer until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	publish := func() {
		values := r.Collect(ctx)
		if err := r.Publish(ctx, values); err != nil {
			r.log.Warn().Err(err).Msg("telemetry publish failed")
		}
	}

	publish()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			publish()
		}
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts an agent name into an entity-id-safe slug.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "agent"
	}
	return slug
}
