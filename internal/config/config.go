// Package config loads the blackboard engine's configuration from a
// YAML file and environment variables; the environment variables read
// in applyEnvOverrides take precedence over the file. .env.local and
// .env are loaded into the environment first and do not override
// variables that are already set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings recognised by the core (§6).
type Config struct {
	Blackboard BlackboardConfig `yaml:"blackboard"`
	Fanout     FanoutConfig     `yaml:"fanout"`
	LLM        LLMConfig        `yaml:"llm"`
	FactCheck  FactCheckConfig  `yaml:"factcheck"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// BlackboardConfig configures the Controller (§4.3, §6).
type BlackboardConfig struct {
	MaxTriggersPerCase     int           `yaml:"max_triggers_per_case"`
	DefaultCooldown        time.Duration `yaml:"default_cooldown"`
	HandlerTimeout         time.Duration `yaml:"handler_timeout"`
	WorkerConcurrency      int           `yaml:"worker_concurrency"`
	CaseIdleResetInterval  time.Duration `yaml:"case_idle_reset_interval"` // 0 disables reset (open question, §9)
}

// FanoutConfig configures the Subscriber Fan-Out (§4.5).
type FanoutConfig struct {
	SendTimeout    time.Duration `yaml:"send_timeout"`
	SubscriberBuf  int           `yaml:"subscriber_buffer"`
}

// LLMConfig configures the AI text completion collaborator (§6).
type LLMConfig struct {
	Provider    string `yaml:"provider"` // "openai", "gemini", "none"
	OpenAIKey   string `yaml:"openai_key"`
	OpenAIModel string `yaml:"openai_model"`
	GeminiKey   string `yaml:"gemini_key"`
	GeminiModel string `yaml:"gemini_model"`
	RedisAddr   string `yaml:"redis_addr"` // proactive rate limiter, empty disables it
}

// FactCheckConfig configures the fact-check lookup collaborator (§6).
type FactCheckConfig struct {
	GitHubToken string        `yaml:"github_token"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// LoggingConfig configures internal/logging, including the file
// rotation policy it enforces once output_file is set.
type LoggingConfig struct {
	Level        string `yaml:"level"`
	JSONFormat   bool   `yaml:"json_format"`
	OutputFile   string `yaml:"output_file"`
	MaxSizeBytes int64  `yaml:"max_size_bytes"`
	MaxBackups   int    `yaml:"max_backups"`
}

// Default returns the specification's default configuration (§6).
func Default() *Config {
	return &Config{
		Blackboard: BlackboardConfig{
			MaxTriggersPerCase:    10,
			DefaultCooldown:       2 * time.Second,
			HandlerTimeout:        30 * time.Second,
			WorkerConcurrency:     1,
			CaseIdleResetInterval: 0,
		},
		Fanout: FanoutConfig{
			SendTimeout:   1 * time.Second,
			SubscriberBuf: 64,
		},
		LLM: LLMConfig{
			Provider:    "none",
			OpenAIModel: "gpt-4o-mini",
			GeminiModel: "gemini-2.0-flash",
		},
		FactCheck: FactCheckConfig{
			CacheTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:        "info",
			MaxSizeBytes: 10 * 1024 * 1024,
			MaxBackups:   3,
		},
	}
}

// Load loads configuration from file, environment variables and .env files.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("blackboard", cfg.Blackboard)
	v.SetDefault("fanout", cfg.Fanout)
	v.SetDefault("llm", cfg.LLM)
	v.SetDefault("factcheck", cfg.FactCheck)
	v.SetDefault("logging", cfg.Logging)

	v.SetEnvPrefix("BLACKBOARD")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configuration that would make the engine's guarantees
// meaningless (§7 configuration-invalid: refuse to start).
func (c *Config) Validate() error {
	if c.Blackboard.MaxTriggersPerCase < 1 {
		return fmt.Errorf("blackboard.max_triggers_per_case must be >= 1, got %d", c.Blackboard.MaxTriggersPerCase)
	}
	if c.Blackboard.DefaultCooldown < 0 {
		return fmt.Errorf("blackboard.default_cooldown must be non-negative")
	}
	if c.Blackboard.WorkerConcurrency < 1 {
		return fmt.Errorf("blackboard.worker_concurrency must be >= 1, got %d", c.Blackboard.WorkerConcurrency)
	}
	if c.Fanout.SendTimeout <= 0 {
		return fmt.Errorf("fanout.send_timeout must be positive")
	}
	return nil
}

func loadEnvFiles() {
	envFiles := []string{".env.local", ".env"}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.OpenAIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.LLM.GeminiKey = key
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.FactCheck.GitHubToken = token
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.LLM.RedisAddr = addr
	}
	if cap := os.Getenv("BLACKBOARD_MAX_TRIGGERS_PER_CASE"); cap != "" {
		if n, err := strconv.Atoi(cap); err == nil {
			cfg.Blackboard.MaxTriggersPerCase = n
		}
	}
	if workers := os.Getenv("BLACKBOARD_WORKER_CONCURRENCY"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			cfg.Blackboard.WorkerConcurrency = n
		}
	}
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("blackboard", c.Blackboard)
	v.Set("fanout", c.Fanout)
	v.Set("llm", c.LLM)
	v.Set("factcheck", c.FactCheck)
	v.Set("logging", c.Logging)

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
