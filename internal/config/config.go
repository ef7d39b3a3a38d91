// Package config loads the daemon's optional TOML configuration file.
// Absence of a config file is not an error; every field has a default.
package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/DJ-Laser/homeslashmusic/internal/source"
)

// Config holds every daemon setting that isn't carried on the command line.
type Config struct {
	// InitialVolume seeds the Player's volume before any client connects.
	InitialVolume float64 `koanf:"initial_volume"`

	// InitialLoopMode is one of "none", "track", "playlist".
	InitialLoopMode string `koanf:"initial_loop_mode"`

	// InitialShuffle seeds the Player's shuffle state at startup.
	InitialShuffle bool `koanf:"initial_shuffle"`

	// SocketDir overrides the directory the control socket is created in.
	// Empty means resolve via the XDG runtime dir chain (spec §6).
	SocketDir string `koanf:"socket_dir"`
}

// DefaultConfig returns the config applied when no file is present or a
// field is left unset.
func DefaultConfig() Config {
	return Config{
		InitialVolume:   1.0,
		InitialLoopMode: "none",
		InitialShuffle:  false,
		SocketDir:       "",
	}
}

// Load reads every config file that exists among getConfigPaths, applying
// later paths over earlier ones, and falls back to DefaultConfig entirely
// when none exist.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if cfg.SocketDir != "" {
		cfg.SocketDir = expandPath(cfg.SocketDir)
	}

	return &cfg, nil
}

// getConfigPaths lists candidate config file locations in ascending
// priority (later entries win).
func getConfigPaths() []string {
	paths := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "homeslashmusic", "config.toml"))
	}

	paths = append(paths, "config.toml")
	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// LoopMode parses InitialLoopMode, defaulting to LoopNone for an
// unrecognized value.
func (c *Config) LoopMode() source.LoopMode {
	switch c.InitialLoopMode {
	case "track":
		return source.LoopTrack
	case "playlist":
		return source.LoopPlaylist
	default:
		return source.LoopNone
	}
}
