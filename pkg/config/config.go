package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-dashboard-prefs/components/dashboard/storage"
)

// StorageOptions selects the settings backend.
type StorageOptions struct {
	Driver   string `env:"DASHBOARD_STORAGE_DRIVER" envDefault:"file"`
	Dir      string `env:"DASHBOARD_STORAGE_DIR" envDefault:"./data/settings"`
	Path     string `env:"DASHBOARD_SQLITE_PATH" envDefault:"./data/settings.db"`
	RedisURL string `env:"DASHBOARD_REDIS_URL"`
}

// Backend converts the options for storage.Open.
func (s StorageOptions) Backend() storage.Options {
	return storage.Options{
		Driver:   s.Driver,
		Dir:      s.Dir,
		Path:     s.Path,
		RedisURL: s.RedisURL,
	}
}

// Validate checks driver specific requirements. An empty driver selects the
// memory backend, matching storage.Open.
func (s StorageOptions) Validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case "", storage.DriverMemory, storage.DriverFile, storage.DriverSQLite:
		return nil
	case storage.DriverRedis:
		if s.RedisURL == "" {
			return errors.New("config: DASHBOARD_REDIS_URL is required when the storage driver is redis")
		}
		return nil
	default:
		return fmt.Errorf("config: unknown storage driver %q", s.Driver)
	}
}

// HTTPOptions configures the server listeners.
type HTTPOptions struct {
	Addr        string `env:"DASHBOARD_HTTP_ADDR" envDefault:":8080"`
	BasePath    string `env:"DASHBOARD_BASE_PATH" envDefault:"/app"`
	MetricsAddr string `env:"DASHBOARD_METRICS_ADDR" envDefault:":9090"`
	MetricsPath string `env:"DASHBOARD_METRICS_PATH" envDefault:"/metrics"`
}

// LogOptions configures logrus.
type LogOptions struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Configuration is the process level configuration shared by the binaries.
type Configuration struct {
	AppID        string `env:"DASHBOARD_APP_ID" envDefault:"go-dashboard-prefs"`
	ManifestPath string `env:"DASHBOARD_MANIFEST"`

	Storage StorageOptions
	HTTP    HTTPOptions
	Log     LogOptions
}

// LoadEnv loads the env files that exist, in order. Missing files are skipped.
func LoadEnv(envFiles ...string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads .env files and the environment into a validated Configuration.
func Load(envFiles ...string) (*Configuration, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	if _, err := LoadEnv(envFiles...); err != nil {
		return nil, fmt.Errorf("config: load env files: %w", err)
	}
	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Logger builds a logrus logger from the log options. Unknown levels fall
// back to info.
func (c *Configuration) Logger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	if out != nil {
		logger.SetOutput(out)
	}
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if strings.EqualFold(c.Log.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
