// Package config loads the service configuration from a .env file, an
// optional YAML file and CHANCACHE_* environment variables, in that order
// of increasing precedence.
package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds everything needed to run the service.
type Config struct {
	APIBaseURL string `yaml:"api_base_url"`
	Token      string `yaml:"token"`
	GatewayURL string `yaml:"gateway_url"`
	SelfUserID string `yaml:"self_user_id"`

	ListenAddr  string `yaml:"listen_addr"`
	DatabaseURL string `yaml:"database_url"`

	TypingInterval time.Duration `yaml:"typing_interval"`
	TickTimeout    time.Duration `yaml:"tick_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	SnapshotEvery  time.Duration `yaml:"snapshot_every"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used for anything left unset.
func Default() Config {
	return Config{
		APIBaseURL:     "https://discord.com/api/v6",
		ListenAddr:     ":8080",
		TypingInterval: 10 * time.Second,
		TickTimeout:    5 * time.Second,
		RequestTimeout: 15 * time.Second,
		SnapshotEvery:  time.Minute,
		LogLevel:       "info",
	}
}

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Load reads the .env file if there is one, then the YAML file at path
// when path is not empty, then the environment overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file loaded")
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "reading %s", path)
		}
		expanded, err := expandEnv(raw)
		if err != nil {
			return cfg, errors.Wrapf(err, "expanding %s", path)
		}
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing %s", path)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// expandEnv replaces ${VAR} and ${VAR:-default} in raw. A variable with no
// value and no default is an error.
func expandEnv(raw []byte) ([]byte, error) {
	var missing []string
	out := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		if v, ok := os.LookupEnv(string(subs[1])); ok {
			return []byte(v)
		}
		if subs[2] != nil {
			return subs[2]
		}
		missing = append(missing, string(subs[1]))
		return match
	})
	if len(missing) > 0 {
		return nil, errors.Errorf("unresolved variables: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"CHANCACHE_API_BASE_URL": &cfg.APIBaseURL,
		"CHANCACHE_TOKEN":        &cfg.Token,
		"CHANCACHE_GATEWAY_URL":  &cfg.GatewayURL,
		"CHANCACHE_SELF_USER_ID": &cfg.SelfUserID,
		"CHANCACHE_LISTEN_ADDR":  &cfg.ListenAddr,
		"CHANCACHE_DATABASE_URL": &cfg.DatabaseURL,
		"CHANCACHE_LOG_LEVEL":    &cfg.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	durs := map[string]*time.Duration{
		"CHANCACHE_TYPING_INTERVAL": &cfg.TypingInterval,
		"CHANCACHE_TICK_TIMEOUT":    &cfg.TickTimeout,
		"CHANCACHE_REQUEST_TIMEOUT": &cfg.RequestTimeout,
		"CHANCACHE_SNAPSHOT_EVERY":  &cfg.SnapshotEvery,
	}
	for name, dst := range durs {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", name)
		}
		*dst = d
	}
	return nil
}

// Validate checks the settings that can't be defaulted.
func (c Config) Validate() error {
	if c.TypingInterval <= 0 {
		return errors.Errorf("typing_interval must be positive, got %v", c.TypingInterval)
	}
	if c.TickTimeout <= 0 || c.TickTimeout >= c.TypingInterval {
		return errors.Errorf("tick_timeout %v must be positive and below typing_interval %v", c.TickTimeout, c.TypingInterval)
	}
	if c.RequestTimeout <= 0 {
		return errors.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
