package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	EnableCycleCompletion  bool
	EnableFillTimeoutSweep bool
	EnableOutboxRelay      bool

	CycleCompletionSpec string
	FillTimeoutSpec     string
	OutboxRelaySpec     string
	WorkerBatchSize     int
}

type fileConfig struct {
	ServiceName  string   `yaml:"service_name"`
	HTTPPort     string   `yaml:"http_port"`
	PostgresDSN  string   `yaml:"postgres_dsn"`
	KafkaBrokers []string `yaml:"kafka_brokers"`

	Workers struct {
		CycleCompletionSpec string `yaml:"cycle_completion_spec"`
		FillTimeoutSpec     string `yaml:"fill_timeout_spec"`
		OutboxRelaySpec     string `yaml:"outbox_relay_spec"`
		BatchSize           int    `yaml:"batch_size"`
	} `yaml:"workers"`
}

// Load resolves configuration in three layers: baked-in defaults, an optional
// YAML file named by CONFIG_FILE, then environment variables. A local .env file
// is folded into the environment first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ServiceName:  "esusu",
		HTTPPort:     "8080",
		KafkaBrokers: []string{"localhost:9092"},

		EnableCycleCompletion:  true,
		EnableFillTimeoutSweep: true,
		EnableOutboxRelay:      true,

		CycleCompletionSpec: "@every 1m",
		FillTimeoutSpec:     "@every 1m",
		OutboxRelaySpec:     "@every 5s",
		WorkerBatchSize:     100,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if value := strings.TrimSpace(os.Getenv("SERVICE_NAME")); value != "" {
		cfg.ServiceName = value
	}
	if value := strings.TrimSpace(os.Getenv("HTTP_PORT")); value != "" {
		cfg.HTTPPort = value
	}
	if value := strings.TrimSpace(os.Getenv("POSTGRES_DSN")); value != "" {
		cfg.PostgresDSN = value
	}
	if brokers := splitList(os.Getenv("KAFKA_BROKERS")); len(brokers) > 0 {
		cfg.KafkaBrokers = brokers
	}

	cfg.EnableCycleCompletion = envBool("ENABLE_CYCLE_COMPLETION", cfg.EnableCycleCompletion)
	cfg.EnableFillTimeoutSweep = envBool("ENABLE_FILL_TIMEOUT_SWEEP", cfg.EnableFillTimeoutSweep)
	cfg.EnableOutboxRelay = envBool("ENABLE_OUTBOX_RELAY", cfg.EnableOutboxRelay)

	if value := strings.TrimSpace(os.Getenv("CYCLE_COMPLETION_SPEC")); value != "" {
		cfg.CycleCompletionSpec = value
	}
	if value := strings.TrimSpace(os.Getenv("FILL_TIMEOUT_SPEC")); value != "" {
		cfg.FillTimeoutSpec = value
	}
	if value := strings.TrimSpace(os.Getenv("OUTBOX_RELAY_SPEC")); value != "" {
		cfg.OutboxRelaySpec = value
	}
	if value := strings.TrimSpace(os.Getenv("WORKER_BATCH_SIZE")); value != "" {
		size, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse WORKER_BATCH_SIZE: %w", err)
		}
		cfg.WorkerBatchSize = size
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if file.ServiceName != "" {
		cfg.ServiceName = file.ServiceName
	}
	if file.HTTPPort != "" {
		cfg.HTTPPort = file.HTTPPort
	}
	if file.PostgresDSN != "" {
		cfg.PostgresDSN = file.PostgresDSN
	}
	if len(file.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = append([]string(nil), file.KafkaBrokers...)
	}
	if file.Workers.CycleCompletionSpec != "" {
		cfg.CycleCompletionSpec = file.Workers.CycleCompletionSpec
	}
	if file.Workers.FillTimeoutSpec != "" {
		cfg.FillTimeoutSpec = file.Workers.FillTimeoutSpec
	}
	if file.Workers.OutboxRelaySpec != "" {
		cfg.OutboxRelaySpec = file.Workers.OutboxRelaySpec
	}
	if file.Workers.BatchSize > 0 {
		cfg.WorkerBatchSize = file.Workers.BatchSize
	}
	return nil
}

func splitList(raw string) []string {
	var items []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
