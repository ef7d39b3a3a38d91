package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DJ-Laser/homeslashmusic/internal/source"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde expands to home", "~/music", filepath.Join(home, "music")},
		{"absolute path unchanged", "/run/user/1000", "/run/user/1000"},
		{"empty string unchanged", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandPath(tt.input); got != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoopModeParsing(t *testing.T) {
	tests := []struct {
		raw  string
		want source.LoopMode
	}{
		{"track", source.LoopTrack},
		{"playlist", source.LoopPlaylist},
		{"none", source.LoopNone},
		{"", source.LoopNone},
		{"garbage", source.LoopNone},
	}

	for _, tt := range tests {
		cfg := Config{InitialLoopMode: tt.raw}
		if got := cfg.LoopMode(); got != tt.want {
			t.Errorf("LoopMode() with raw %q = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() { _ = os.Chdir(originalWd) }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.InitialVolume != 1.0 {
		t.Errorf("InitialVolume = %v, want 1.0", cfg.InitialVolume)
	}
	if cfg.InitialLoopMode != "none" {
		t.Errorf("InitialLoopMode = %q, want %q", cfg.InitialLoopMode, "none")
	}
}

func TestLoad_BasicConfig(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() { _ = os.Chdir(originalWd) }()

	configContent := `
initial_volume = 0.5
initial_loop_mode = "playlist"
initial_shuffle = true
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.InitialVolume != 0.5 {
		t.Errorf("InitialVolume = %v, want 0.5", cfg.InitialVolume)
	}
	if cfg.InitialLoopMode != "playlist" {
		t.Errorf("InitialLoopMode = %q, want %q", cfg.InitialLoopMode, "playlist")
	}
	if !cfg.InitialShuffle {
		t.Error("InitialShuffle = false, want true")
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() { _ = os.Chdir(originalWd) }()

	if err := os.WriteFile("config.toml", []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}

func TestLoad_SocketDirExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() { _ = os.Chdir(originalWd) }()

	if err := os.WriteFile("config.toml", []byte(`socket_dir = "~/run"`), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "run"); cfg.SocketDir != want {
		t.Errorf("SocketDir = %q, want %q", cfg.SocketDir, want)
	}
}
