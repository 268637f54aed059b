// Package config loads btlive settings from a TOML file.
//
// The file is optional. Missing keys keep their defaults and command-line
// flags override file values:
//
//	log_level = "debug"
//
//	[server]
//	addr     = ":8000"
//	tree     = "tree.json"
//	interval = "250ms"
//
//	[viewer]
//	server          = "http://localhost:8000"
//	addr            = ":8080"
//	heartbeat       = "5s"
//	reconnect_delay = "1.5s"
//	debounce        = "120ms"
//
//	[storage]
//	uri = "redis://localhost:6379/0"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/btlive/pkg/errors"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config is the full configuration.
type Config struct {
	LogLevel string        `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Server   ServerConfig  `toml:"server"`
	Viewer   ViewerConfig  `toml:"viewer"`
	Storage  StorageConfig `toml:"storage"`
}

// ServerConfig configures `btlive serve`.
type ServerConfig struct {
	Addr     string        `toml:"addr" validate:"required,hostname_port"`
	Tree     string        `toml:"tree"`
	Interval time.Duration `toml:"interval" validate:"gte=10ms"`
	// Demo feeds random node states.
	Demo         bool          `toml:"demo"`
	DemoInterval time.Duration `toml:"demo_interval" validate:"gte=10ms"`
	Metrics      bool          `toml:"metrics"`
}

// ViewerConfig configures `btlive view`.
type ViewerConfig struct {
	Server           string        `toml:"server" validate:"required,url"`
	Addr             string        `toml:"addr" validate:"required,hostname_port"`
	Heartbeat        time.Duration `toml:"heartbeat" validate:"gte=100ms"`
	ReconnectDelay   time.Duration `toml:"reconnect_delay" validate:"gte=10ms"`
	Debounce         time.Duration `toml:"debounce" validate:"gte=0"`
	RelayoutAttempts int           `toml:"relayout_attempts" validate:"min=1,max=10"`
	Output           string        `toml:"output"`
	Metrics          bool          `toml:"metrics"`
}

// StorageConfig selects the collapse-state backend; see storage.Open.
type StorageConfig struct {
	URI string `toml:"uri"`
	Key string `toml:"key" validate:"required"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr:         ":8000",
			Interval:     250 * time.Millisecond,
			DemoInterval: time.Second,
		},
		Viewer: ViewerConfig{
			Server:           "http://localhost:8000",
			Addr:             ":8080",
			Heartbeat:        5 * time.Second,
			ReconnectDelay:   1500 * time.Millisecond,
			Debounce:         120 * time.Millisecond,
			RelayoutAttempts: 1,
		},
		Storage: StorageConfig{
			Key: "bt_collapsed_nodes",
		},
	}
}

// Dir returns the config directory ($XDG_CONFIG_HOME/btlive or
// ~/.config/btlive).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, "btlive"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "btlive"), nil
}

// Load reads path over the defaults and validates the result. An empty
// path means the default location, where a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, FileName)
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
	case !explicit && os.IsNotExist(err):
		return Default(), nil
	default:
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}
