package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full service configuration: built-in defaults, optionally
// overridden by a YAML file, overridden again by COUPON_* environment
// variables. Double underscore separates nesting levels so single
// underscores survive in key names (COUPON_SERVER__READ_TIMEOUT=30s →
// server.read_timeout).
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Mongo      MongoConfig      `koanf:"mongo"`
	Redis      RedisConfig      `koanf:"redis"`
	Log        LogConfig        `koanf:"log"`
	Plans      PlansConfig      `koanf:"plans"`
	Redemption RedemptionConfig `koanf:"redemption"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type MongoConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

type RedisConfig struct {
	URL     string        `koanf:"url"`
	PlanTTL time.Duration `koanf:"plan_ttl"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// PlansConfig overrides the coupon quota per plan. -1 means unlimited.
type PlansConfig struct {
	Free     int64 `koanf:"free"`
	Servicio int64 `koanf:"servicio"`
	Tienda   int64 `koanf:"tienda"`
}

type RedemptionConfig struct {
	MaxRetries int `koanf:"max_retries"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in that order of precedence.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("COUPON_", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "15s",
		"server.write_timeout":    "15s",
		"server.shutdown_timeout": "5s",

		"mongo.uri":      "mongodb://localhost:27017",
		"mongo.database": "coupon_service",

		"redis.url":      "",
		"redis.plan_ttl": "5m",

		"log.level": "info",

		"plans.free":     3,
		"plans.servicio": 10,
		"plans.tienda":   -1,

		"redemption.max_retries": 5,
	}
}

func envKeyReplacer(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, "COUPON_")), "__", ".")
}
