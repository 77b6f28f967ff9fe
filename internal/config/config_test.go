package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/cadence/internal/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFiles_Defaults(t *testing.T) {
	cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "second", cfg.Player.TimeEventFrequency)
	assert.Equal(t, engine.EverySecond, cfg.Player.Frequency())
	assert.True(t, cfg.Player.AutoAdvance)
	assert.Equal(t, 1.0, cfg.Player.Volume)
	assert.Equal(t, 100, cfg.Player.BufferMillis)
	assert.Equal(t, 100*time.Millisecond, cfg.Player.Buffer())
	assert.Zero(t, cfg.Player.SampleRate)
	assert.True(t, cfg.Remote.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Remote.SkipInterval())
	assert.Empty(t, cfg.Remote.Commands)
	assert.False(t, cfg.Remote.Notify)
	assert.True(t, cfg.State.Persist)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Log.Output)
}

func TestLoadFiles_Values(t *testing.T) {
	path := writeConfig(t, `
[player]
time_event_frequency = "quarter"
auto_advance = false
volume = 0.0
buffer_millis = 250
sample_rate = 48000

[remote]
enabled = false
skip_interval_seconds = 30
commands = ["play", "pause"]
notify = true

[state]
persist = false
path = "~/cadence.db"

[log]
level = "DEBUG"
output = "stderr"
`)

	cfg, err := LoadFiles(path)
	require.NoError(t, err)

	assert.Equal(t, engine.EveryQuarterSecond, cfg.Player.Frequency())
	assert.False(t, cfg.Player.AutoAdvance, "explicit false survives defaults")
	assert.Equal(t, 0.0, cfg.Player.Volume, "explicit zero survives defaults")
	assert.Equal(t, 250, cfg.Player.BufferMillis)
	assert.Equal(t, 48000, cfg.Player.SampleRate)
	assert.False(t, cfg.Remote.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Remote.SkipInterval())
	assert.Equal(t, []string{"play", "pause"}, cfg.Remote.Commands)
	assert.True(t, cfg.Remote.Notify)
	assert.False(t, cfg.State.Persist)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "cadence.db"), cfg.State.Path)
}

func TestLoadFiles_LaterOverrides(t *testing.T) {
	first := writeConfig(t, `
[player]
volume = 0.3
buffer_millis = 50
`)
	second := writeConfig(t, `
[player]
volume = 0.6
`)

	cfg, err := LoadFiles(first, second)
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.Player.Volume)
	assert.Equal(t, 50, cfg.Player.BufferMillis)
}

func TestLoadFiles_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "invalid = [[["},
		{"volume out of range", "[player]\nvolume = 1.5"},
		{"unknown frequency", "[player]\ntime_event_frequency = \"hourly\""},
		{"buffer too small", "[player]\nbuffer_millis = 1"},
		{"bad sample rate", "[player]\nsample_rate = 100"},
		{"skip interval zero", "[remote]\nskip_interval_seconds = 0"},
		{"unknown level", "[log]\nlevel = \"verbose\""},
		{"unknown output", "[log]\noutput = \"syslog\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFiles(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLogFile(t *testing.T) {
	path, err := LogConfig{File: "/tmp/custom.log"}.LogFile()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.log", path)
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	require.Len(t, paths, 2)
	assert.Equal(t, "config.toml", paths[len(paths)-1])
	assert.Equal(t, "config.toml", filepath.Base(paths[0]))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/music", filepath.Join(home, "music")},
		{"/usr/local/music", "/usr/local/music"},
		{"music/albums", "music/albums"},
		{"", ""},
		{"~", home},
	}
	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
