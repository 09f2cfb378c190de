package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRegistryAggregation(t *testing.T) {
	registry := NewHealthRegistry()
	registry.Register("database", DatabaseHealthChecker(func(ctx context.Context) error {
		return nil
	}))
	registry.Register("redis", RedisHealthChecker(func(ctx context.Context) error {
		return errors.New("connection refused")
	}))

	health := registry.GetOverallHealth(context.Background())

	// A degraded dependency degrades the whole, an unhealthy one fails it.
	assert.Equal(t, HealthStatusDegraded, health.Status)
	require.Len(t, health.Checks, 2)
	assert.Equal(t, HealthStatusHealthy, health.Checks["database"].Status)
	assert.Equal(t, HealthStatusDegraded, health.Checks["redis"].Status)
}

func TestHealthRegistryUnhealthyDatabase(t *testing.T) {
	registry := NewHealthRegistry()
	registry.Register("database", DatabaseHealthChecker(func(ctx context.Context) error {
		return errors.New("down")
	}))

	health := registry.GetOverallHealth(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, health.Status)
}

func TestHealthRegistryCheckOne(t *testing.T) {
	registry := NewHealthRegistry()
	registry.Register("database", DatabaseHealthChecker(func(ctx context.Context) error {
		return nil
	}))

	result, ok := registry.CheckOne(context.Background(), "database")
	require.True(t, ok)
	assert.Equal(t, HealthStatusHealthy, result.Status)

	_, ok = registry.CheckOne(context.Background(), "missing")
	assert.False(t, ok)
}

func TestHealthRegistryEmptyIsHealthy(t *testing.T) {
	registry := NewHealthRegistry()
	assert.Equal(t, HealthStatusHealthy, registry.OverallStatus())
}
