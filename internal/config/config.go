// Package config loads the player configuration from TOML files.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/cadence/internal/engine"
)

const appName = "cadence"

type Config struct {
	Player PlayerConfig `koanf:"player"`
	Remote RemoteConfig `koanf:"remote"`
	State  StateConfig  `koanf:"state"`
	Log    LogConfig    `koanf:"log"`
}

// PlayerConfig holds playback settings.
type PlayerConfig struct {
	TimeEventFrequency string  `koanf:"time_event_frequency" default:"second" validate:"oneof=second half quarter"`
	AutoAdvance        bool    `koanf:"auto_advance" default:"true"`
	Volume             float64 `koanf:"volume" default:"1" validate:"gte=0,lte=1"`
	BufferMillis       int     `koanf:"buffer_millis" default:"100" validate:"gte=10,lte=2000"`
	SampleRate         int     `koanf:"sample_rate" validate:"omitempty,gte=8000,lte=192000"` // 0 adopts the first item's rate
}

// RemoteConfig holds media key and desktop integration settings.
type RemoteConfig struct {
	Enabled             bool     `koanf:"enabled" default:"true"`
	SkipIntervalSeconds int      `koanf:"skip_interval_seconds" default:"15" validate:"gte=1,lte=600"`
	Commands            []string `koanf:"commands"` // empty enables every command
	Notify              bool     `koanf:"notify"`   // desktop notification on track change
}

// StateConfig holds queue persistence settings.
type StateConfig struct {
	Persist bool   `koanf:"persist" default:"true"`
	Path    string `koanf:"path"` // empty means the XDG data directory
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level" default:"info" validate:"oneof=debug info warn error"`
	Output string `koanf:"output" default:"file" validate:"oneof=stdout stderr file"`
	File   string `koanf:"file"` // empty means the XDG state directory
}

// Load reads the XDG config file, then ./config.toml.
func Load() (*Config, error) {
	return LoadFiles(getConfigPaths()...)
}

// LoadFiles reads paths in order, later files overriding earlier ones.
// Missing files are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "load %s", path)
			}
		}
	}

	// Defaults go in first: creasty/defaults cannot tell an explicit false
	// from an unset bool.
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	cfg.State.Path = expandPath(cfg.State.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Output = strings.ToLower(cfg.Log.Output)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// Frequency returns the periodic time event frequency.
func (p PlayerConfig) Frequency() engine.TimeEventFrequency {
	return engine.ParseTimeEventFrequency(p.TimeEventFrequency)
}

// Buffer returns the output buffer length.
func (p PlayerConfig) Buffer() time.Duration {
	return time.Duration(p.BufferMillis) * time.Millisecond
}

// SkipInterval returns the skip forward/backward step.
func (r RemoteConfig) SkipInterval() time.Duration {
	return time.Duration(r.SkipIntervalSeconds) * time.Second
}

// LogFile returns the log file path, defaulting to the XDG state directory.
func (l LogConfig) LogFile() (string, error) {
	if l.File != "" {
		return l.File, nil
	}
	path, err := xdg.StateFile(filepath.Join(appName, appName+".log"))
	return path, errors.Wrap(err, "resolve log path")
}

func getConfigPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
