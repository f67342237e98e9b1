// Package config loads the engine's YAML configuration with environment
// variable overrides for deployment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Engine   EngineConfig   `yaml:"engine"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetHost returns the configured host, defaulting to localhost.
func (s ServerConfig) GetHost() string {
	if s.Host == "" {
		return "localhost"
	}
	return s.Host
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the view cache settings.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ArchiveConfig holds S3 snapshot archival settings.
type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Prefix   string `yaml:"s3_prefix"`
	Region     string `yaml:"region"`
	AWSProfile string `yaml:"aws_profile"`
}

// EngineConfig tunes the analytics windows, pricing, and recompute loop.
type EngineConfig struct {
	LookbackDays             int                `yaml:"lookback_days"`
	CohortMonths             int                `yaml:"cohort_months"`
	TrendUnit                string             `yaml:"trend_unit"`
	TrendCount               int                `yaml:"trend_count"`
	RevenueLookbackMonths    int                `yaml:"revenue_lookback_months"`
	TopClients               int                `yaml:"top_clients"`
	CacheTTLSeconds          int                `yaml:"cache_ttl_seconds"`
	RecomputeEnabled         bool               `yaml:"recompute_enabled"`
	RecomputeIntervalMinutes int                `yaml:"recompute_interval_minutes"`
	TierPrices               map[string]float64 `yaml:"tier_prices"`
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Archive.Region == "" {
		cfg.Archive.Region = "us-west-2"
	}
	if cfg.Archive.S3Prefix == "" {
		cfg.Archive.S3Prefix = "engagement-snapshots"
	}
	if cfg.Engine.LookbackDays == 0 {
		cfg.Engine.LookbackDays = 90
	}
	if cfg.Engine.CohortMonths == 0 {
		cfg.Engine.CohortMonths = 6
	}
	if cfg.Engine.TrendUnit == "" {
		cfg.Engine.TrendUnit = "week"
	}
	if cfg.Engine.TrendCount == 0 {
		cfg.Engine.TrendCount = 12
	}
	if cfg.Engine.RevenueLookbackMonths == 0 {
		cfg.Engine.RevenueLookbackMonths = 12
	}
	if cfg.Engine.TopClients == 0 {
		cfg.Engine.TopClients = 10
	}
	if cfg.Engine.CacheTTLSeconds == 0 {
		cfg.Engine.CacheTTLSeconds = 300
	}
	if cfg.Engine.RecomputeIntervalMinutes == 0 {
		cfg.Engine.RecomputeIntervalMinutes = 15
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if bucket := os.Getenv("ARCHIVE_S3_BUCKET"); bucket != "" {
		cfg.Archive.S3Bucket = bucket
		cfg.Archive.Enabled = true
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	return cfg, nil
}
