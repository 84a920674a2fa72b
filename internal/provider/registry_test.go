package provider

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestRegistry_RegisterAndGetHealth(t *testing.T) {
	registry := NewRegistry()
	registry.Register("openweathermap")

	health := registry.GetHealth("openweathermap")
	require.NotNil(t, health)
	assert.Equal(t, "openweathermap", health.Name)
	assert.Nil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)
	assert.True(t, health.IsHealthy(), "a provider that was never called is healthy")
}

func TestRegistry_UnknownProvider(t *testing.T) {
	registry := NewRegistry()

	assert.Nil(t, registry.GetHealth("missing"))

	// Recording against an unknown provider is ignored.
	registry.RecordSuccess("missing")
	registry.RecordFailure("missing", errors.New("boom"))
	assert.Empty(t, registry.GetAllHealth())
}

func TestRegistry_RecordSuccess(t *testing.T) {
	registry := NewRegistry()
	registry.Register("openweathermap")

	registry.RecordSuccess("openweathermap")

	health := registry.GetHealth("openweathermap")
	require.NotNil(t, health.LastSuccessAt)
	assert.WithinDuration(t, time.Now(), *health.LastSuccessAt, time.Second)
	assert.True(t, health.IsHealthy())
}

func TestRegistry_FailureThenRecovery(t *testing.T) {
	registry := NewRegistry()
	registry.now = steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	registry.Register("openweathermap")

	registry.RecordSuccess("openweathermap")
	registry.RecordFailure("openweathermap", errors.New("503 Server Error: Service Unavailable"))

	health := registry.GetHealth("openweathermap")
	assert.False(t, health.IsHealthy())
	assert.Equal(t, "503 Server Error: Service Unavailable", health.LastError)

	registry.RecordSuccess("openweathermap")

	health = registry.GetHealth("openweathermap")
	assert.True(t, health.IsHealthy())
	assert.Equal(t, "503 Server Error: Service Unavailable", health.LastError, "last error is kept for diagnostics")
}

func TestRegistry_RegisterTwiceKeepsHistory(t *testing.T) {
	registry := NewRegistry()
	registry.Register("openweathermap")
	registry.RecordFailure("openweathermap", errors.New("timeout"))

	registry.Register("openweathermap")

	health := registry.GetHealth("openweathermap")
	require.NotNil(t, health.LastFailureAt)
	assert.Equal(t, "timeout", health.LastError)
}

func TestRegistry_GetAllHealthSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register("zeta")
	registry.Register("alpha")
	registry.Register("mid")

	all := registry.GetAllHealth()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "mid", all[1].Name)
	assert.Equal(t, "zeta", all[2].Name)
}

func TestMetrics_RecordRequest(t *testing.T) {
	metrics, err := NewMetrics()
	require.NoError(t, err)

	// Should not panic
	metrics.RecordRequest("openweathermap", "weather", 25*time.Millisecond, nil)
	metrics.RecordRequest("openweathermap", "forecast", time.Second, errors.New("boom"))

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("openweathermap", "weather", time.Millisecond, nil)
}
