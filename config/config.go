// Package config resolves service settings from built-in defaults, an optional YAML file,
// an optional .env file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Supported values for Database.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const (
	defaultPort              = "8080"
	defaultDriver            = DriverPostgres
	defaultPostgresDSN       = "user=postgres password=password dbname=fabula host=localhost port=5432 sslmode=disable"
	defaultSQLiteDSN         = "fabula.db"
	defaultLogLevel          = "info"
	defaultRequestTimeout    = 60 * time.Second
	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 25
	defaultDBConnMaxLifetime = 5 * time.Minute

	// DefaultEnvFile is read when Load is not given any env files.
	DefaultEnvFile = ".env"
)

// Environment variables understood by Load.
const (
	EnvPort              = "PORT"
	EnvDBDriver          = "DB_DRIVER"
	EnvDBConnString      = "DB_CONNECTION_STRING"
	EnvLogLevel          = "LOG_LEVEL"
	EnvRequestTimeout    = "REQUEST_TIMEOUT"
	EnvDBMaxOpenConns    = "DB_MAX_OPEN_CONNS"
	EnvDBMaxIdleConns    = "DB_MAX_IDLE_CONNS"
	EnvDBConnMaxLifetime = "DB_CONN_MAX_LIFETIME"
)

// Config is the top-level fabula configuration.
type Config struct {
	Port           string         `yaml:"port"`
	LogLevel       string         `yaml:"log_level"`
	RequestTimeout time.Duration  `yaml:"request_timeout"`
	Database       DatabaseConfig `yaml:"database"`
}

// DatabaseConfig selects and tunes the persistence backend.
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"`            // postgres, sqlite or memory
	ConnectionString string        `yaml:"connection_string"` // Empty selects the driver's default
	MaxOpenConns     int           `yaml:"max_open_conns"`
	MaxIdleConns     int           `yaml:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Port:           defaultPort,
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultRequestTimeout,
		Database: DatabaseConfig{
			Driver:          defaultDriver,
			MaxOpenConns:    defaultDBMaxOpenConns,
			MaxIdleConns:    defaultDBMaxIdleConns,
			ConnMaxLifetime: defaultDBConnMaxLifetime,
		},
	}
}

// Load builds the configuration. path may be empty, in which case no YAML file is read;
// a path that is given must exist. Missing env files are skipped. Values already present in
// the process environment win over the env files.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv(EnvPort, c.Port)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.Database.Driver = getEnv(EnvDBDriver, c.Database.Driver)
	c.Database.ConnectionString = getEnv(EnvDBConnString, c.Database.ConnectionString)

	var err error
	if c.RequestTimeout, err = getEnvDuration(EnvRequestTimeout, c.RequestTimeout); err != nil {
		return err
	}
	if c.Database.MaxOpenConns, err = getEnvInt(EnvDBMaxOpenConns, c.Database.MaxOpenConns); err != nil {
		return err
	}
	if c.Database.MaxIdleConns, err = getEnvInt(EnvDBMaxIdleConns, c.Database.MaxIdleConns); err != nil {
		return err
	}
	if c.Database.ConnMaxLifetime, err = getEnvDuration(EnvDBConnMaxLifetime, c.Database.ConnMaxLifetime); err != nil {
		return err
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("port %q is not a valid TCP port", c.Port)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q (valid: %s, %s, %s)",
			c.Database.Driver, DriverPostgres, DriverSQLite, DriverMemory)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		return errors.New("database connection limits cannot be negative")
	}
	if c.Database.ConnMaxLifetime < 0 {
		return fmt.Errorf("conn_max_lifetime cannot be negative, got %s", c.Database.ConnMaxLifetime)
	}
	return nil
}

// DSN returns the connection string, falling back to the driver's default.
func (d DatabaseConfig) DSN() string {
	if d.ConnectionString != "" {
		return d.ConnectionString
	}
	switch d.Driver {
	case DriverPostgres:
		return defaultPostgresDSN
	case DriverSQLite:
		return defaultSQLiteDSN
	default:
		return ""
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration: %w", key, value, err)
	}
	return d, nil
}
