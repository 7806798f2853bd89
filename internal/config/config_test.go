package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 2, cfg.ExecutionRetries)
	assert.Equal(t, time.Second, cfg.ExecutionBaseDelay())
	assert.Equal(t, 1000, cfg.DBDefaultLimit)
	assert.Equal(t, []string{"jobs:products-sales"}, cfg.Queues())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("EXECUTION_RETRIES", "4")
	t.Setenv("EXECUTION_BASE_DELAY", "250")
	t.Setenv("REPLICATION_QUEUES", "jobs:products-sales, jobs:products-orders ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 4, cfg.ExecutionRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.ExecutionBaseDelay())
	assert.Equal(t, []string{"jobs:products-sales", "jobs:products-orders"}, cfg.Queues())
}
