package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "TREND_SCANNER_CONFIG"
	databaseDSNEnv     = "DATABASE_DSN"
	generatorKeyEnv    = "GENERATOR_API_KEY"
	generatorModelEnv  = "GENERATOR_MODEL"
	generatorKindEnv   = "GENERATOR_PROVIDER"
	anthropicAPIKeyEnv = "ANTHROPIC_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Generator GeneratorConfig `yaml:"generator"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Sites     []SiteConfig    `yaml:"sites"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details for the selection sink.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when recurring runs fire.
type SchedulerConfig struct {
	CronExpression string `yaml:"cronExpression"`
	Timezone       string `yaml:"timezone"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil || s.Timezone == "" {
		return time.UTC
	}
	return loc
}

// GeneratorConfig defines how to contact the text-generation service.
type GeneratorConfig struct {
	Provider    string  `yaml:"provider"`
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float64 `yaml:"temperature"`
}

// PipelineConfig carries the tunables of one extraction run.
type PipelineConfig struct {
	Mode                     string  `yaml:"mode"`
	MaxPhrasesPerCategory    int     `yaml:"maxPhrasesPerCategory"`
	ExtractionTarget         int     `yaml:"extractionTargetPerCategory"`
	MaxRetries               int     `yaml:"maxRetries"`
	InterCallDelaySeconds    float64 `yaml:"interCallDelaySeconds"`
	MaxConcurrency           int     `yaml:"maxConcurrency"`
	CompressionMaxChars      int     `yaml:"compressionMaxChars"`
	CompressionMaxRecords    int     `yaml:"compressionMaxRecords"`
	DedupOverlapThreshold    float64 `yaml:"dedupOverlapThreshold"`
	OverallTimeoutSeconds    float64 `yaml:"overallTimeoutSeconds"`
	AttemptTimeoutSeconds    float64 `yaml:"attemptTimeoutSeconds"`
	RateLimitCooldownSeconds float64 `yaml:"rateLimitCooldownSeconds"`
}

// InterCallDelay converts the configured seconds into a duration.
func (p PipelineConfig) InterCallDelay() time.Duration {
	return time.Duration(p.InterCallDelaySeconds * float64(time.Second))
}

// OverallTimeout converts the configured seconds into a duration.
func (p PipelineConfig) OverallTimeout() time.Duration {
	return time.Duration(p.OverallTimeoutSeconds * float64(time.Second))
}

// AttemptTimeout converts the configured seconds into a duration.
func (p PipelineConfig) AttemptTimeout() time.Duration {
	return time.Duration(p.AttemptTimeoutSeconds * float64(time.Second))
}

// RateLimitCooldown converts the configured seconds into a duration.
func (p PipelineConfig) RateLimitCooldown() time.Duration {
	return time.Duration(p.RateLimitCooldownSeconds * float64(time.Second))
}

// SiteConfig describes a single feed site with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig holds a concrete listing URL to crawl.
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(generatorKindEnv); v != "" {
		c.Generator.Provider = v
	}

	if v := os.Getenv(generatorModelEnv); v != "" {
		c.Generator.Model = v
	}

	if v := os.Getenv(generatorKeyEnv); v != "" {
		c.Generator.APIKey = v
	}

	if c.Generator.Provider == "anthropic" && c.Generator.APIKey == "" {
		c.Generator.APIKey = os.Getenv(anthropicAPIKeyEnv)
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Generator.Provider != "" {
		base.Generator.Provider = override.Generator.Provider
	}
	if override.Generator.Endpoint != "" {
		base.Generator.Endpoint = override.Generator.Endpoint
	}
	if override.Generator.Model != "" {
		base.Generator.Model = override.Generator.Model
	}
	if override.Generator.APIKey != "" {
		base.Generator.APIKey = override.Generator.APIKey
	}
	if override.Generator.MaxTokens > 0 {
		base.Generator.MaxTokens = override.Generator.MaxTokens
	}
	if override.Generator.Temperature > 0 {
		base.Generator.Temperature = override.Generator.Temperature
	}

	base.Pipeline = mergePipeline(base.Pipeline, override.Pipeline)

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func mergePipeline(base, override PipelineConfig) PipelineConfig {
	if override.Mode != "" {
		base.Mode = override.Mode
	}
	if override.MaxPhrasesPerCategory > 0 {
		base.MaxPhrasesPerCategory = override.MaxPhrasesPerCategory
	}
	if override.ExtractionTarget > 0 {
		base.ExtractionTarget = override.ExtractionTarget
	}
	if override.MaxRetries > 0 {
		base.MaxRetries = override.MaxRetries
	}
	if override.InterCallDelaySeconds > 0 {
		base.InterCallDelaySeconds = override.InterCallDelaySeconds
	}
	if override.MaxConcurrency > 0 {
		base.MaxConcurrency = override.MaxConcurrency
	}
	if override.CompressionMaxChars > 0 {
		base.CompressionMaxChars = override.CompressionMaxChars
	}
	if override.CompressionMaxRecords > 0 {
		base.CompressionMaxRecords = override.CompressionMaxRecords
	}
	if override.DedupOverlapThreshold > 0 {
		base.DedupOverlapThreshold = override.DedupOverlapThreshold
	}
	if override.OverallTimeoutSeconds > 0 {
		base.OverallTimeoutSeconds = override.OverallTimeoutSeconds
	}
	if override.AttemptTimeoutSeconds > 0 {
		base.AttemptTimeoutSeconds = override.AttemptTimeoutSeconds
	}
	if override.RateLimitCooldownSeconds > 0 {
		base.RateLimitCooldownSeconds = override.RateLimitCooldownSeconds
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: "UTC"},
		Generator: GeneratorConfig{
			Provider:    "chatgpt",
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.3,
		},
		Pipeline: PipelineConfig{
			Mode:                     "sequential",
			MaxPhrasesPerCategory:    10,
			ExtractionTarget:         15,
			MaxRetries:               3,
			InterCallDelaySeconds:    2,
			MaxConcurrency:           4,
			CompressionMaxChars:      4000,
			CompressionMaxRecords:    400,
			DedupOverlapThreshold:    0.4,
			OverallTimeoutSeconds:    180,
			AttemptTimeoutSeconds:    30,
			RateLimitCooldownSeconds: 15,
		},
		Sites: []SiteConfig{
			{
				Name:    "newsfeed",
				Scanner: "headline",
				Categories: []CategoryConfig{
					{Name: "front", URL: "https://news.example.org/latest"},
				},
			},
		},
	}
}
