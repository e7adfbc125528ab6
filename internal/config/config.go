// Package config provides centralized configuration management for the
// report pipeline. Runtime settings come from environment variables with
// sensible defaults and are validated on startup to fail fast on
// misconfiguration; the per-report-type cleaning profiles are a data table
// loaded from YAML (see profiles.go).
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Database DatabaseConfig
	Catalog  CatalogConfig
	Report   ReportConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds catalog database connection settings. The URL is
// optional: without a database the pipeline runs in degraded mode with
// blank descriptions.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// CatalogConfig holds reference catalog settings.
type CatalogConfig struct {
	// MasterFile is the master workbook holding WBS codes and names.
	// Its presence on disk distinguishes "source missing" from
	// "not yet imported" when the catalog table is empty.
	MasterFile string `env:"CATALOG_MASTER_FILE" default:"data/WBS_NAMES.XLSX"`
}

// ReportConfig holds report processing settings.
type ReportConfig struct {
	// ProfilesFile is an optional YAML file overriding the built-in
	// report-type profile table.
	ProfilesFile string `env:"REPORT_PROFILES_FILE"`

	// CurrencySymbol prefixes formatted amounts (default: ₹)
	CurrencySymbol string `env:"CURRENCY_SYMBOL" default:"₹"`

	// SignBeforeSymbol places the negative sign ahead of the currency
	// symbol, "-₹ 5,000.00" (default: true)
	SignBeforeSymbol bool `env:"CURRENCY_SIGN_BEFORE_SYMBOL" default:"true"`

	// MaxFileSize is the maximum allowed export size in bytes (default: 100MB)
	MaxFileSize int64 `env:"REPORT_MAX_FILE_SIZE" default:"104857600"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
