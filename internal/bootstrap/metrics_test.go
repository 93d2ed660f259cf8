package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhsn/forumweb/config"
	"github.com/mhsn/forumweb/internal/observability/statsd"
)

func TestNewMetricsDisabled(t *testing.T) {
	sink, closeFn := NewMetrics(config.ObservabilityMetricsConfig{}, discardLogger())
	assert.IsType(t, statsd.Nop{}, sink)
	assert.NoError(t, closeFn())
}

func TestNewMetricsEnabled(t *testing.T) {
	sink, closeFn := NewMetrics(config.ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: "127.0.0.1:8125",
		Prefix:        "forumweb",
	}, discardLogger())
	require.IsType(t, &statsd.Client{}, sink)
	sink.Count("auth.transition", 1, nil)
	assert.NoError(t, closeFn())
}
