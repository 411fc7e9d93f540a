package profiling

import (
	"testing"

	"github.com/getmentor/notion-notifier/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileTypes_Default(t *testing.T) {
	got, err := parseProfileTypes("  ")
	require.NoError(t, err)
	assert.Equal(t, defaultProfileTypes, got)
}

func TestParseProfileTypes_CustomDeduplicates(t *testing.T) {
	got, err := parseProfileTypes("cpu, mutex,cpu,,MUTEX")
	require.NoError(t, err)

	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, got)
}

func TestParseProfileTypes_Invalid(t *testing.T) {
	_, err := parseProfileTypes("cpu,heap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported O11Y_PROFILING_SAMPLE_TYPES")
}

func TestProfileTags_SkipsEmpty(t *testing.T) {
	tags := profileTags("notion-notifier", "", "production", "1.0.0", " ")
	assert.Equal(t, map[string]string{
		"service_name":    "notion-notifier",
		"environment":     "production",
		"service_version": "1.0.0",
	}, tags)
}

func TestInitProfiler_Disabled(t *testing.T) {
	stop, err := InitProfiler(config.ProfilingConfig{Enabled: false}, "svc", "ns", "1", "i", "test")
	require.NoError(t, err)
	require.NotNil(t, stop)
	stop()
}

func TestInitProfiler_RequiresEndpoint(t *testing.T) {
	_, err := InitProfiler(config.ProfilingConfig{Enabled: true, Endpoint: " "}, "svc", "ns", "1", "i", "test")
	require.Error(t, err)
}
