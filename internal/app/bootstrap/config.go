package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	SettlementURL string

	KafkaBrokers       []string
	TopicDomainEvents  string
	TopicDepositEvents string
	TopicRoleEvents    string

	TriggerRegistryID  string
	KeeperPollInterval time.Duration
	OutboxPollInterval time.Duration

	IdempotencyTTL time.Duration
	SweepBatchSize int
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		DatabaseURL        string   `yaml:"database_url"`
		RedisURL           string   `yaml:"redis_url"`
		SettlementURL      string   `yaml:"settlement_url"`
		KafkaBrokers       []string `yaml:"kafka_brokers"`
		TopicDomainEvents  string   `yaml:"topic_domain_events"`
		TopicDepositEvents string   `yaml:"topic_deposit_events"`
		TopicRoleEvents    string   `yaml:"topic_role_events"`
	} `yaml:"dependencies"`
	Keeper struct {
		TriggerRegistryID   string `yaml:"trigger_registry_id"`
		PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
		SweepBatchSize      int    `yaml:"sweep_batch_size"`
	} `yaml:"keeper"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "flow-roles-vault",
		HTTPPort:           8080,
		GRPCPort:           9090,
		TopicDomainEvents:  "vault.domain.events",
		TopicDepositEvents: "vault.deposit.events",
		TopicRoleEvents:    "vault.role.events",
		TriggerRegistryID:  "keeper",
		KeeperPollInterval: 30 * time.Second,
		OutboxPollInterval: 2 * time.Second,
		IdempotencyTTL:     7 * 24 * time.Hour,
		SweepBatchSize:     100,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		cfg.DatabaseURL = f.Dependencies.DatabaseURL
		cfg.RedisURL = f.Dependencies.RedisURL
		cfg.SettlementURL = f.Dependencies.SettlementURL
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.TopicDomainEvents != "" {
			cfg.TopicDomainEvents = f.Dependencies.TopicDomainEvents
		}
		if f.Dependencies.TopicDepositEvents != "" {
			cfg.TopicDepositEvents = f.Dependencies.TopicDepositEvents
		}
		if f.Dependencies.TopicRoleEvents != "" {
			cfg.TopicRoleEvents = f.Dependencies.TopicRoleEvents
		}
		if f.Keeper.TriggerRegistryID != "" {
			cfg.TriggerRegistryID = f.Keeper.TriggerRegistryID
		}
		if f.Keeper.PollIntervalSeconds > 0 {
			cfg.KeeperPollInterval = time.Duration(f.Keeper.PollIntervalSeconds) * time.Second
		}
		if f.Keeper.SweepBatchSize > 0 {
			cfg.SweepBatchSize = f.Keeper.SweepBatchSize
		}
	}

	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.SettlementURL = envOrDefault("SETTLEMENT_URL", cfg.SettlementURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.TopicDomainEvents = envOrDefault("KAFKA_TOPIC_DOMAIN_EVENTS", cfg.TopicDomainEvents)
	cfg.TopicDepositEvents = envOrDefault("KAFKA_TOPIC_DEPOSIT_EVENTS", cfg.TopicDepositEvents)
	cfg.TopicRoleEvents = envOrDefault("KAFKA_TOPIC_ROLE_EVENTS", cfg.TopicRoleEvents)
	cfg.TriggerRegistryID = envOrDefault("KEEPER_TRIGGER_REGISTRY_ID", cfg.TriggerRegistryID)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.KeeperPollInterval = time.Duration(envInt("KEEPER_POLL_SECONDS", int(cfg.KeeperPollInterval.Seconds()))) * time.Second
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.SweepBatchSize = envInt("SWEEP_BATCH_SIZE", cfg.SweepBatchSize)

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
