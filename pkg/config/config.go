package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// TierConfig holds the per-tier access policy. A zero quota or lookback
// means unbounded.
type TierConfig struct {
	DailyQuota   int64    `yaml:"daily_quota"`
	LookbackDays int      `yaml:"lookback_days"`
	Indicators   []string `yaml:"indicators"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
	Dataset struct {
		Source     string `yaml:"source"` // csv or clickhouse
		CSVPath    string `yaml:"csv_path"`
		ClickHouse struct {
			Host             string        `yaml:"host"`
			Port             int           `yaml:"port"`
			Database         string        `yaml:"database"`
			Table            string        `yaml:"table"`
			User             string        `yaml:"user"`
			Password         string        `yaml:"password"`
			DialTimeout      time.Duration `yaml:"dial_timeout"`
			ReadTimeout      time.Duration `yaml:"read_timeout"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		} `yaml:"clickhouse"`
	} `yaml:"dataset"`
	Cache struct {
		Backend    string        `yaml:"backend"` // memory, redis, or layered
		TTL        time.Duration `yaml:"ttl"`
		OpTimeout  time.Duration `yaml:"op_timeout"`
		MaxEntries int           `yaml:"max_entries"`
		Redis      struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Store string `yaml:"store"` // memory or redis
	} `yaml:"ratelimit"`
	Tiers map[string]TierConfig `yaml:"tiers"`
	Auth  struct {
		JWTSecret  string        `yaml:"jwt_secret"`
		TokenTTL   time.Duration `yaml:"token_ttl"`
		BcryptCost int           `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Scheduler struct {
		CounterPurgeSpec string        `yaml:"counter_purge_spec"`
		SweepInterval    time.Duration `yaml:"sweep_interval"`
	} `yaml:"scheduler"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("DATASET_CSV_PATH"); v != "" {
		c.Dataset.CSVPath = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 30 * time.Minute
	}
	if c.Cache.OpTimeout == 0 {
		c.Cache.OpTimeout = 250 * time.Millisecond
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 4096
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "stockinsight"
	}
	if c.RateLimit.Store == "" {
		c.RateLimit.Store = "memory"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 30 * time.Minute
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/users.db"
	}
	if c.Scheduler.CounterPurgeSpec == "" {
		// a few seconds past local midnight
		c.Scheduler.CounterPurgeSpec = "5 0 0 * * *"
	}
	if c.Scheduler.SweepInterval == 0 {
		c.Scheduler.SweepInterval = 5 * time.Minute
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Dataset.Source {
	case "csv":
		if c.Dataset.CSVPath == "" {
			return fmt.Errorf("dataset.csv_path is required for csv source")
		}
	case "clickhouse":
		if c.Dataset.ClickHouse.Host == "" {
			return fmt.Errorf("dataset.clickhouse.host is required for clickhouse source")
		}
		if c.Dataset.ClickHouse.Table == "" {
			return fmt.Errorf("dataset.clickhouse.table is required for clickhouse source")
		}
	default:
		return fmt.Errorf("dataset.source must be 'csv' or 'clickhouse', got '%s'", c.Dataset.Source)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis', or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.RateLimit.Store != "memory" && c.RateLimit.Store != "redis" {
		return fmt.Errorf("ratelimit.store must be 'memory' or 'redis', got '%s'", c.RateLimit.Store)
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("tiers table is required")
	}
	for name, tc := range c.Tiers {
		if tc.DailyQuota < 0 {
			return fmt.Errorf("tiers.%s.daily_quota must be >= 0", name)
		}
		if tc.LookbackDays < 0 {
			return fmt.Errorf("tiers.%s.lookback_days must be >= 0", name)
		}
		if len(tc.Indicators) == 0 {
			return fmt.Errorf("tiers.%s.indicators cannot be empty", name)
		}
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}
