package cli

import (
	"context"
	"strings"
	"time"

	"sparkify/internal/config"
	"sparkify/internal/logging"
	"sparkify/internal/metrics"
	"sparkify/internal/metrics/datadog"
)

// initMetrics installs the configured metrics backend process-wide and
// returns the function that flushes and uninstalls it.
//
// A backend that fails to start is logged and replaced by the nop backend;
// metrics never fail a load.
func initMetrics(ctx context.Context, m config.Metrics, runID string, log *logging.Logger) (func(), error) {
	name := strings.ToLower(strings.TrimSpace(m.Backend))

	switch name {
	case "datadog":
		tags := append([]string{"run_id:" + runID}, m.Tags...)
		b, err := datadog.NewBackend(ctx, datadog.Options{
			JobName:    "sparkify",
			Tags:       tags,
			FlushEvery: 60 * time.Second,
		})
		if err != nil {
			log.Warnf("metrics: failed to init datadog backend: %v; using nop", err)
			return func() {}, nil
		}
		log.Debugf("metrics: backend=%s tags=%v", name, tags)
		metrics.SetBackend(b)
		return func() {
			if err := b.Close(); err != nil {
				log.Warnf("metrics: datadog close/flush error: %v", err)
			}
			metrics.SetBackend(nil)
		}, nil

	case "", "none":
		log.Debugf("metrics: disabled")
		return func() {}, nil

	default:
		log.Warnf("metrics: unknown backend %q; metrics disabled", m.Backend)
		return func() {}, nil
	}
}
