package bootstrap

import (
	"log/slog"

	"github.com/mhsn/forumweb/config"
	"github.com/mhsn/forumweb/internal/observability/statsd"
)

// NewMetrics returns the StatsD sink, or a no-op sink when metrics are off or
// the agent address is unusable. The returned close func is never nil.
//
//nolint:ireturn // callers only need the Sink surface.
func NewMetrics(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (statsd.Sink, func() error) {
	noop := func() error { return nil }
	if !cfg.IsEnabled() {
		return statsd.Nop{}, noop
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		if logger != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		}
		return statsd.Nop{}, noop
	}
	return client, client.Close
}
