package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Драйверы хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Переменные окружения.
const (
	EnvMetricsAddr         = "POS_METRICS_ADDR"
	EnvStorageDriver       = "POS_STORAGE_DRIVER"
	EnvPostgresDSN         = "POS_POSTGRES_DSN"
	EnvPostgresAutoMigrate = "POS_POSTGRES_AUTO_MIGRATE"
	EnvCatalogSeed         = "POS_CATALOG_SEED"
	EnvTimezone            = "POS_TIMEZONE"
	EnvKafkaBrokers        = "KAFKA_BROKERS"
	EnvKafkaTopic          = "POS_KAFKA_TOPIC"
	EnvOutboxPollInterval  = "POS_OUTBOX_POLL_INTERVAL"
	EnvOutboxBatchSize     = "POS_OUTBOX_BATCH_SIZE"
	EnvOutboxMaxAttempts   = "POS_OUTBOX_MAX_ATTEMPTS"
	EnvOutboxRetryDelay    = "POS_OUTBOX_RETRY_DELAY"
)

// Config описывает настройки терминала.
type Config struct {
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool
	// CatalogSeedPath: YAML со стартовым каталогом для memory-драйвера.
	CatalogSeedPath string
	// Timezone: IANA-имя пояса для отметок времени и дневных сумм. Пусто: локальный пояс.
	Timezone string

	KafkaBrokers string
	KafkaTopic   string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	// OutboxMaxPendingAge: возраст самой старой записи, после которого /healthz сообщает degraded.
	OutboxMaxPendingAge time.Duration
}

// DefaultConfig возвращает настройки по умолчанию: memory-хранилище, без Kafka.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		KafkaTopic:          "pos.order.events",
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
		OutboxMaxPendingAge: 5 * time.Minute,
	}
}

// LoadConfigFromEnv читает конфигурацию через lookup (обычно os.LookupEnv).
// Некорректные значения не прерывают запуск: остаётся значение по умолчанию, а в warnings: описание.
func LoadConfigFromEnv(lookup func(string) (string, bool)) (Config, []string) {
	cfg := DefaultConfig()
	var warnings []string

	str := func(key string, target *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}
	duration := func(key string, target *time.Duration, allowZero bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil || d < 0 || (d == 0 && !allowZero) {
			warnings = append(warnings, fmt.Sprintf("%s: invalid duration %q, using %s", key, v, *target))
			return
		}
		*target = d
	}
	positiveInt := func(key string, target *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s: invalid positive integer %q, using %d", key, v, *target))
			return
		}
		*target = n
	}

	str(EnvMetricsAddr, &cfg.MetricsAddr)
	str(EnvPostgresDSN, &cfg.PostgresDSN)
	str(EnvCatalogSeed, &cfg.CatalogSeedPath)
	str(EnvTimezone, &cfg.Timezone)
	str(EnvKafkaBrokers, &cfg.KafkaBrokers)
	str(EnvKafkaTopic, &cfg.KafkaTopic)

	if v, ok := lookup(EnvStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvPostgresAutoMigrate); ok && strings.TrimSpace(v) != "" {
		b, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, using %t", EnvPostgresAutoMigrate, err, cfg.PostgresAutoMigrate))
		} else {
			cfg.PostgresAutoMigrate = b
		}
	}

	duration(EnvOutboxPollInterval, &cfg.OutboxPollInterval, false)
	duration(EnvOutboxRetryDelay, &cfg.OutboxRetryDelay, true)
	positiveInt(EnvOutboxBatchSize, &cfg.OutboxBatchSize)
	positiveInt(EnvOutboxMaxAttempts, &cfg.OutboxMaxAttempts)

	return cfg, warnings
}

// Location возвращает часовой пояс из конфигурации.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Brokers возвращает список брокеров Kafka без пустых элементов.
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", v)
	}
}
