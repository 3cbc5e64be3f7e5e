// Package config resolves run settings for the sparkify command.
//
// Precedence, lowest first: built-in defaults, sparkify.yaml, process
// environment (which .env feeds), command-line flags. Flags are applied by the
// cli package; this package handles the first three layers.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"sparkify/internal/catalog"
)

// ErrConfigNotFound is returned by LoadFile when sparkify.yaml does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// FileName is the optional config file looked up in the working directory.
const FileName = "sparkify.yaml"

const (
	DefaultKind        = "postgres"
	DefaultPostgresDSN = "host=127.0.0.1 dbname=sparkifydb user=student password=student"
	DefaultSQLiteDSN   = "file:sparkify.db"
	DefaultSongData    = "data/song_data"
	DefaultLogData     = "data/log_data"
)

// Database selects the backend and how to reach it.
//
// DSN wins when set. Otherwise a DSN is built from the component fields; if
// none are set the backend default applies.
type Database struct {
	Kind     string `yaml:"kind"`
	DSN      string `yaml:"dsn,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     string `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Name     string `yaml:"name,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
	Encrypt  string `yaml:"encrypt,omitempty"`
	Params   string `yaml:"params,omitempty"`
	SQLite   string `yaml:"sqlite,omitempty"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Metrics struct {
	// Backend is "none" or "datadog".
	Backend string   `yaml:"backend"`
	Tags    []string `yaml:"tags,omitempty"`
}

type Config struct {
	Database    Database `yaml:"database"`
	SongDataDir string   `yaml:"song_data"`
	LogDataDir  string   `yaml:"log_data"`
	// BatchSize > 1 enables multi-row time/users inserts in the log phase.
	BatchSize int     `yaml:"batch_size"`
	Log       Log     `yaml:"log"`
	Metrics   Metrics `yaml:"metrics"`
}

// Default returns the fixed settings the command runs with when nothing is
// configured.
func Default() Config {
	return Config{
		Database:    Database{Kind: DefaultKind},
		SongDataDir: DefaultSongData,
		LogDataDir:  DefaultLogData,
		BatchSize:   1,
		Log:         Log{Level: "info", Format: "console"},
		Metrics:     Metrics{Backend: "none"},
	}
}

// LoadFile reads dir/sparkify.yaml over the defaults.
func LoadFile(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Load resolves defaults, then dir/sparkify.yaml when present, then the
// environment via getenv. A missing file is not an error.
//
// The result is not validated; flags may still override it. Call Validate
// once every layer is applied.
func Load(dir string, getenv func(string) string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile(dir)
	switch {
	case err == nil:
		cfg = *fileCfg
	case errors.Is(err, ErrConfigNotFound):
	default:
		return Config{}, err
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	str(&c.Database.Kind, "SPARKIFY_DB_KIND")
	str(&c.Database.DSN, "SPARKIFY_DSN", "DSN")
	str(&c.Database.Host, "DSN_HOST")
	str(&c.Database.Port, "DSN_PORT")
	str(&c.Database.User, "DSN_USER")
	// password keeps surrounding spaces.
	if v := getenv("DSN_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	str(&c.Database.Name, "DSN_DB")
	str(&c.Database.SSLMode, "DSN_SSLMODE")
	str(&c.Database.Encrypt, "DSN_ENCRYPT")
	str(&c.Database.Params, "DSN_PARAMS")
	str(&c.Database.SQLite, "DSN_SQLITE")

	str(&c.SongDataDir, "SPARKIFY_SONG_DATA")
	str(&c.LogDataDir, "SPARKIFY_LOG_DATA")
	str(&c.Log.Level, "LOG_LEVEL")
	str(&c.Log.Format, "LOG_FORMAT")
	str(&c.Metrics.Backend, "METRICS_BACKEND")

	if v := strings.TrimSpace(getenv("METRICS_TAGS")); v != "" {
		c.Metrics.Tags = splitCSV(v)
	}
	if v := strings.TrimSpace(getenv("SPARKIFY_BATCH_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SPARKIFY_BATCH_SIZE: %w", err)
		}
		c.BatchSize = n
	}
	return nil
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	if normalizeKind(c.Database.Kind) == "" {
		return fmt.Errorf("database.kind: unsupported %q", c.Database.Kind)
	}
	if c.SongDataDir == "" || c.LogDataDir == "" {
		return errors.New("song_data and log_data must be set")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1, got %d", c.BatchSize)
	}
	switch strings.ToLower(c.Metrics.Backend) {
	case "", "none", "datadog":
	default:
		return fmt.Errorf("metrics.backend: unsupported %q", c.Metrics.Backend)
	}
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeKind returns the registry kind for s, or "" when unsupported.
func normalizeKind(s string) string {
	d, err := catalog.ParseDialect(s)
	if err != nil {
		return ""
	}
	return d.String()
}
