package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config is the top-level smartcal configuration. Values come from an optional
// YAML file, then SMARTCAL_* environment variables, then the env-default tags.
type Config struct {
	DataDir        string `yaml:"data_dir" env:"SMARTCAL_DATA_DIR"`
	EventsFile     string `yaml:"events_file" env:"SMARTCAL_EVENTS_FILE" env-default:"calendar_events.log"`
	CredentialFile string `yaml:"credential_file" env:"SMARTCAL_CREDENTIAL_FILE" env-default:"api_key.json"`

	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	LLM     LLMConfig     `yaml:"llm"`
	Watcher WatcherConfig `yaml:"watcher"`
}

// StoreConfig selects the event store backend.
type StoreConfig struct {
	Backend    string `yaml:"backend" env:"SMARTCAL_STORE_BACKEND" env-default:"json"`
	SQLitePath string `yaml:"sqlite_path" env:"SMARTCAL_SQLITE_PATH" env-default:"events.db"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"SMARTCAL_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"SMARTCAL_LOG_FORMAT" env-default:"console"`
}

// LLMConfig holds the chat-completion endpoint settings.
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint" env:"SMARTCAL_LLM_ENDPOINT" env-default:"https://api.deepseek.com/v1"`
	Model       string        `yaml:"model" env:"SMARTCAL_LLM_MODEL" env-default:"deepseek-chat"`
	Timeout     time.Duration `yaml:"timeout" env:"SMARTCAL_LLM_TIMEOUT" env-default:"60s"`
	MaxRetries  int           `yaml:"max_retries" env:"SMARTCAL_LLM_MAX_RETRIES" env-default:"1"`
	Temperature float64       `yaml:"temperature" env:"SMARTCAL_LLM_TEMPERATURE" env-default:"0.3"`
	MaxTokens   int           `yaml:"max_tokens" env:"SMARTCAL_LLM_MAX_TOKENS" env-default:"2000"`
	Workers     int           `yaml:"workers" env:"SMARTCAL_LLM_WORKERS" env-default:"4"`
	LogCalls    bool          `yaml:"log_calls" env:"SMARTCAL_LLM_LOG_CALLS" env-default:"false"`
}

// WatcherConfig controls the clipboard selection watcher.
type WatcherConfig struct {
	Interval  time.Duration `yaml:"interval" env:"SMARTCAL_WATCH_INTERVAL" env-default:"500ms"`
	MinLength int           `yaml:"min_length" env:"SMARTCAL_WATCH_MIN_LENGTH" env-default:"4"`
}

// Load reads configuration. The YAML path comes from SMARTCAL_CONFIG, falling
// back to <home>/.smartcal/config.yaml. A missing default file is not an error;
// a missing explicit file is.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("SMARTCAL_CONFIG")
	explicitPath := path != ""
	if !explicitPath {
		dir, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that the env-default tags cannot constrain.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.Store.Backend))
	}
	if c.LLM.Endpoint == "" {
		errs = append(errs, errors.New("llm.endpoint is required"))
	}
	if c.LLM.Workers < 1 {
		errs = append(errs, fmt.Errorf("llm.workers must be >= 1, got %d", c.LLM.Workers))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("llm.max_retries must be >= 0, got %d", c.LLM.MaxRetries))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be in [0,2], got %g", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be >= 1, got %d", c.LLM.MaxTokens))
	}
	if c.Watcher.Interval <= 0 {
		errs = append(errs, fmt.Errorf("watcher.interval must be positive, got %s", c.Watcher.Interval))
	}
	return errors.Join(errs...)
}

// resolvePaths anchors relative file names in DataDir.
func (c *Config) resolvePaths() error {
	if c.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return err
		}
		c.DataDir = dir
	}
	c.EventsFile = inDir(c.DataDir, c.EventsFile)
	c.CredentialFile = inDir(c.DataDir, c.CredentialFile)
	c.Store.SQLitePath = inDir(c.DataDir, c.Store.SQLitePath)
	return nil
}

func inDir(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".smartcal"), nil
}
