package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env        string     `mapstructure:"env"`        // current application environment (local, dev, prod etc)
	Quiz       Quiz       `mapstructure:"quiz"`       // quiz run parameters
	Bank       Bank       `mapstructure:"bank"`       // question bank / cache settings
	Watcher    Watcher    `mapstructure:"watcher"`    // document watcher settings
	Repository Repository `mapstructure:"repository"` // question repository backend selection
}

// Quiz contains per-run quiz parameters.
type Quiz struct {
	SampleSize        int `mapstructure:"sample_size"`         // questions drawn per run
	PassThreshold     int `mapstructure:"pass_threshold"`      // minimum score to pass
	TimeBudgetSeconds int `mapstructure:"time_budget_seconds"` // total time for a run
}

// Bank contains question bank and local cache settings.
type Bank struct {
	CacheFile    string        `mapstructure:"cache_file"`    // path of the JSON pool snapshot
	ProbeURL     string        `mapstructure:"probe_url"`     // well-known endpoint for the connectivity check
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"` // connectivity check timeout
}

// Watcher contains document watcher settings.
type Watcher struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`   // revision poll interval
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`   // sleep after a failed cycle
	ResyncSchedule string        `mapstructure:"resync_schedule"` // optional cron spec for forced resyncs
}

// Repository selects and configures the question repository backend.
type Repository struct {
	Driver string `mapstructure:"driver"` // "gsheet", "postgres" or "sqlite"
	Sheet  Sheet  `mapstructure:"sheet"`  // Google Sheets backend settings
	DB     DB     `mapstructure:"database"`
	SQLite SQLite `mapstructure:"sqlite"`
}

// Sheet contains Google API settings shared by the Sheets repository and
// the Docs document source.
type Sheet struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id"` // spreadsheet holding the question rows
	SheetName     string `mapstructure:"sheet_name"`     // tab name within the spreadsheet
	DocumentID    string `mapstructure:"document_id"`    // authoring document watched for new questions
	APIToken      string `mapstructure:"-"`              // OAuth bearer token loaded from environment
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// SQLite contains the local database backend settings.
type SQLite struct {
	Path string `mapstructure:"path"` // database file path
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("quiz.sample_size", 40)
	v.SetDefault("quiz.pass_threshold", 32)
	v.SetDefault("quiz.time_budget_seconds", 3600)
	v.SetDefault("bank.cache_file", "quiz_cache.json")
	v.SetDefault("bank.probe_url", "https://www.google.com")
	v.SetDefault("bank.probe_timeout", "5s")
	v.SetDefault("watcher.poll_interval", "300s")
	v.SetDefault("watcher.retry_backoff", "60s")
	v.SetDefault("repository.driver", "gsheet")
	v.SetDefault("repository.sheet.sheet_name", "Sheet1")
	v.SetDefault("repository.sqlite.path", "questions.db")
	v.SetDefault("repository.database.max_connections", 10)
	v.SetDefault("repository.database.max_conn_lifetime", "30s")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("google_api_token", "GOOGLE_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables. Which ones are
	// required depends on the selected repository driver, so validation
	// happens at the call sites that need them.
	cfg.Repository.Sheet.APIToken = v.GetString("google_api_token")
	cfg.Repository.DB.URL = v.GetString("database_url")

	if cfg.Quiz.SampleSize <= 0 {
		return nil, fmt.Errorf("quiz.sample_size must be positive, got %d", cfg.Quiz.SampleSize)
	}
	if cfg.Quiz.PassThreshold < 0 || cfg.Quiz.PassThreshold > cfg.Quiz.SampleSize {
		return nil, fmt.Errorf("quiz.pass_threshold must be within [0, %d], got %d",
			cfg.Quiz.SampleSize, cfg.Quiz.PassThreshold)
	}
	if cfg.Quiz.TimeBudgetSeconds <= 0 {
		return nil, fmt.Errorf("quiz.time_budget_seconds must be positive, got %d", cfg.Quiz.TimeBudgetSeconds)
	}

	return &cfg, nil
}
