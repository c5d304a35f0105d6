package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Refresher RefresherConfig `mapstructure:"refresher"`
	Export    ExportConfig    `mapstructure:"export"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// LedgerConfig holds budget ledger behavior configuration
type LedgerConfig struct {
	// AutoApprove commits direct labour entries as approved at commit time
	// (single-approver deployments). When false, entries land in
	// pending_approval and spending is applied on explicit approval.
	AutoApprove bool `mapstructure:"auto_approve"`

	// DefaultOverheadCategory is the indirect-cost category code charged for
	// overhead labour that names no explicit category. An explicit category
	// on the entry always wins.
	DefaultOverheadCategory string `mapstructure:"default_overhead_category"`

	// MinRejectionReasonLen is the minimum length of a submission rejection reason.
	MinRejectionReasonLen int `mapstructure:"min_rejection_reason_len"`

	// RequireWorkItemLinks rejects submission approval when a line carries
	// hours but no work-item link.
	RequireWorkItemLinks bool `mapstructure:"require_work_item_links"`
}

// RefresherConfig holds the async refresher worker configuration
type RefresherConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

// ExportConfig holds cost summary export configuration
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/siteledger.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("ledger.auto_approve", true)
	viper.SetDefault("ledger.default_overhead_category", "site_overhead")
	viper.SetDefault("ledger.min_rejection_reason_len", 10)
	viper.SetDefault("ledger.require_work_item_links", false)

	viper.SetDefault("refresher.queue_size", 256)

	viper.SetDefault("export.output_dir", "exports")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("database.path", "SITELEDGER_DB_PATH")
	viper.BindEnv("server.port", "SITELEDGER_PORT")
	viper.BindEnv("logger.level", "SITELEDGER_LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Ledger.DefaultOverheadCategory == "" {
		return fmt.Errorf("ledger.default_overhead_category is required")
	}
	if c.Ledger.MinRejectionReasonLen < 1 {
		return fmt.Errorf("ledger.min_rejection_reason_len must be positive")
	}
	if c.Refresher.QueueSize < 1 {
		return fmt.Errorf("refresher.queue_size must be positive")
	}
	return nil
}
