// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type BrokerConfig struct {
	PublishAttempts int           `yaml:"publish_attempts"`
	PublishBackoff  time.Duration `yaml:"publish_backoff"`
	// ResultTimeout bounds the wait for a terminal signal per task before it
	// is marked failed with a timeout reason.
	ResultTimeout time.Duration `yaml:"result_timeout"`
	DedupeSize    int           `yaml:"dedupe_size"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	Model           string `yaml:"model"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent LLM calls
}

type DriverConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type OutreachConfig struct {
	DailyLimit          int           `yaml:"daily_limit"`
	WarmupLimit         int           `yaml:"warmup_limit"`
	QuotaWindow         string        `yaml:"quota_window"` // calendar | rolling
	DelayMin            time.Duration `yaml:"delay_min"`
	DelayMax            time.Duration `yaml:"delay_max"`
	EmployeesPerCompany int           `yaml:"employees_per_company"`
}

type FormConfig struct {
	MaxSteps        int           `yaml:"max_steps"`
	MaxFillAttempts int           `yaml:"max_fill_attempts"`
	RetryAttempts   int           `yaml:"retry_attempts"` // capability-call retries
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
}

type WorkerConfig struct {
	Count int `yaml:"count"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Broker   BrokerConfig   `yaml:"broker"`
	Session  SessionConfig  `yaml:"session"`
	AI       AIConfig       `yaml:"ai"`
	Driver   DriverConfig   `yaml:"driver"`
	Outreach OutreachConfig `yaml:"outreach"`
	Form     FormConfig     `yaml:"form"`
	Worker   WorkerConfig   `yaml:"worker"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Worker.Count <= 0 {
		cfg.Worker.Count = 4
	}
	if cfg.Broker.PublishAttempts <= 0 {
		cfg.Broker.PublishAttempts = 5
	}
	if cfg.Broker.PublishBackoff <= 0 {
		cfg.Broker.PublishBackoff = 200 * time.Millisecond
	}
	if cfg.Broker.ResultTimeout <= 0 {
		cfg.Broker.ResultTimeout = 2 * time.Hour
	}
	if cfg.Broker.DedupeSize <= 0 {
		cfg.Broker.DedupeSize = 512
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = time.Hour
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 8
	}
	if cfg.Driver.Timeout <= 0 {
		cfg.Driver.Timeout = 2 * time.Minute
	}
	if cfg.Outreach.DailyLimit <= 0 {
		cfg.Outreach.DailyLimit = 50
	}
	if cfg.Outreach.WarmupLimit <= 0 {
		cfg.Outreach.WarmupLimit = 10
	}
	if cfg.Outreach.QuotaWindow == "" {
		cfg.Outreach.QuotaWindow = "calendar"
	}
	if cfg.Outreach.DelayMin <= 0 {
		cfg.Outreach.DelayMin = 30 * time.Second
	}
	if cfg.Outreach.DelayMax <= 0 {
		cfg.Outreach.DelayMax = 120 * time.Second
	}
	if cfg.Outreach.DelayMax < cfg.Outreach.DelayMin {
		cfg.Outreach.DelayMax = cfg.Outreach.DelayMin
	}
	if cfg.Outreach.EmployeesPerCompany <= 0 {
		cfg.Outreach.EmployeesPerCompany = 10
	}
	if cfg.Form.MaxSteps <= 0 {
		cfg.Form.MaxSteps = 10
	}
	if cfg.Form.MaxFillAttempts <= 0 {
		cfg.Form.MaxFillAttempts = 3
	}
	if cfg.Form.RetryAttempts <= 0 {
		cfg.Form.RetryAttempts = 3
	}
	if cfg.Form.RetryBackoff <= 0 {
		cfg.Form.RetryBackoff = 500 * time.Millisecond
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Driver.BaseURL == "" {
		return nil, errors.New("driver.base_url is required")
	}
	if cfg.Outreach.QuotaWindow != "calendar" && cfg.Outreach.QuotaWindow != "rolling" {
		return nil, fmt.Errorf("outreach.quota_window must be calendar or rolling, got %q", cfg.Outreach.QuotaWindow)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
