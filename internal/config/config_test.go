package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "petstore-core", cfg.ServiceName)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, "instant", cfg.PaymentGateway)
	assert.Equal(t, 5, cfg.LowStockLevel)
	assert.Empty(t, cfg.Brokers())
}

func TestLoadFromEnvironmentAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("KAFKA_TOPIC=from-file\nSHUTDOWN_TIMEOUT=3s\n"), 0o600))

	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("SEED_CATALOG", "false")
	t.Cleanup(func() {
		os.Unsetenv("KAFKA_TOPIC")
		os.Unsetenv("SHUTDOWN_TIMEOUT")
	})

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())
	assert.False(t, cfg.SeedCatalog)
	assert.Equal(t, "from-file", cfg.KafkaTopic)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("IDEMPOTENCY_TTL", "forever")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
