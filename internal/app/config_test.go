package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFromMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, warnings := LoadConfigFromEnv(lookupFromMap(nil))

	require.Empty(t, warnings)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.True(t, cfg.PostgresAutoMigrate)
	assert.Empty(t, cfg.Brokers())
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	cfg, warnings := LoadConfigFromEnv(lookupFromMap(map[string]string{
		EnvMetricsAddr:         "127.0.0.1:9191",
		EnvStorageDriver:       " Postgres ",
		EnvPostgresDSN:         "postgres://pos:pos@db:5432/pos",
		EnvPostgresAutoMigrate: "off",
		EnvCatalogSeed:         "/etc/pos/catalog.yaml",
		EnvTimezone:            "Europe/Moscow",
		EnvKafkaBrokers:        "kafka-1:9092, kafka-2:9092,",
		EnvKafkaTopic:          "cafe.orders",
		EnvOutboxPollInterval:  "250ms",
		EnvOutboxBatchSize:     "20",
		EnvOutboxMaxAttempts:   "5",
		EnvOutboxRetryDelay:    "0s",
	}))

	require.Empty(t, warnings)
	assert.Equal(t, "127.0.0.1:9191", cfg.MetricsAddr)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "postgres://pos:pos@db:5432/pos", cfg.PostgresDSN)
	assert.False(t, cfg.PostgresAutoMigrate)
	assert.Equal(t, "/etc/pos/catalog.yaml", cfg.CatalogSeedPath)
	assert.Equal(t, "Europe/Moscow", cfg.Timezone)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())
	assert.Equal(t, "cafe.orders", cfg.KafkaTopic)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 20, cfg.OutboxBatchSize)
	assert.Equal(t, 5, cfg.OutboxMaxAttempts)
	assert.Equal(t, time.Duration(0), cfg.OutboxRetryDelay)
}

func TestLoadConfigFromEnv_InvalidValuesKeepDefaults(t *testing.T) {
	defaults := DefaultConfig()

	cfg, warnings := LoadConfigFromEnv(lookupFromMap(map[string]string{
		EnvPostgresAutoMigrate: "maybe",
		EnvOutboxPollInterval:  "0s",
		EnvOutboxRetryDelay:    "soon",
		EnvOutboxBatchSize:     "-1",
		EnvOutboxMaxAttempts:   "many",
	}))

	require.Len(t, warnings, 5)
	assert.Equal(t, defaults.PostgresAutoMigrate, cfg.PostgresAutoMigrate)
	assert.Equal(t, defaults.OutboxPollInterval, cfg.OutboxPollInterval)
	assert.Equal(t, defaults.OutboxRetryDelay, cfg.OutboxRetryDelay)
	assert.Equal(t, defaults.OutboxBatchSize, cfg.OutboxBatchSize)
	assert.Equal(t, defaults.OutboxMaxAttempts, cfg.OutboxMaxAttempts)
}

func TestConfigLocation(t *testing.T) {
	loc, err := Config{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = Config{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = Config{Timezone: "Mars/Olympus"}.Location()
	require.Error(t, err)
}
