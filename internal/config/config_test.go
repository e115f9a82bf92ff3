package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Window.TickRate != 60 {
		t.Errorf("expected tick rate 60, got %d", cfg.Window.TickRate)
	}

	// Player body defaults
	if cfg.Physics.Gravity != 0.21875 {
		t.Errorf("expected gravity 0.21875, got %v", cfg.Physics.Gravity)
	}
	if cfg.Physics.MaxFallSpeed != 16 {
		t.Errorf("expected max fall speed 16, got %v", cfg.Physics.MaxFallSpeed)
	}
	if cfg.Physics.JumpVelocity != -5 {
		t.Errorf("expected jump velocity -5, got %v", cfg.Physics.JumpVelocity)
	}
	if cfg.Physics.GroundRadius != 5 {
		t.Errorf("expected ground radius 5, got %v", cfg.Physics.GroundRadius)
	}
	if cfg.Physics.FloorLimit != 1000 {
		t.Errorf("expected floor limit 1000, got %v", cfg.Physics.FloorLimit)
	}

	if cfg.Assets.CollisionLayer != 0 {
		t.Errorf("expected collision layer 0, got %d", cfg.Assets.CollisionLayer)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  tick_rate: 120

assets:
  root: "/srv/tails"
  act_file: "HillTopZone/Act2.txt"
  block_dir: "HillTopZone"
  block_prefix: "Chunk"
  tiles_per_row: 32

physics:
  gravity: 0.5
  jump_velocity: -6.5

audio:
  master_volume: 0.5
  muted: true

logging:
  level: "debug"
  log_file: "tails.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.TickRate != 120 {
		t.Errorf("expected tick rate 120, got %d", cfg.Window.TickRate)
	}

	if cfg.Assets.Root != "/srv/tails" || cfg.Assets.ActFile != "HillTopZone/Act2.txt" {
		t.Errorf("unexpected asset paths %+v", cfg.Assets)
	}
	if cfg.Assets.BlockPrefix != "Chunk" || cfg.Assets.TilesPerRow != 32 {
		t.Errorf("unexpected block settings %+v", cfg.Assets)
	}
	// Untouched keys keep their defaults
	if cfg.Assets.CollisionMap != "Collision.png" {
		t.Errorf("expected default collision map, got %s", cfg.Assets.CollisionMap)
	}

	if cfg.Physics.Gravity != 0.5 || cfg.Physics.JumpVelocity != -6.5 {
		t.Errorf("unexpected physics %+v", cfg.Physics)
	}
	if cfg.Physics.MaxFallSpeed != 16 {
		t.Errorf("expected default max fall speed, got %v", cfg.Physics.MaxFallSpeed)
	}

	if cfg.Audio.MasterVolume != 0.5 || !cfg.Audio.Muted {
		t.Errorf("unexpected audio %+v", cfg.Audio)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "tails.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if cfg.Window.Width != 1280 {
		t.Errorf("expected defaults to survive, got width %d", cfg.Window.Width)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "window:\n  width: not a number\n  invalid syntax here\n"},
		{"unknown key", "window:\n  widht: 800\n"},
		{"unknown section", "network:\n  login_server: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Window.Width != 800 {
		t.Errorf("expected width 800, got %d", cfg.Window.Width)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("window:\n  width: -1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected validation error for negative width")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Window.TickRate = 0
	cfg.Assets.ActFile = ""
	cfg.Assets.CollisionLayer = 2
	cfg.Audio.SFXVolume = 1.5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	errs := multierr.Errors(err)
	if len(errs) != 5 {
		t.Errorf("expected 5 aggregated errors, got %d: %v", len(errs), err)
	}
	for _, want := range []string{"window size", "tick rate", "act_file", "collision_layer", "sfx_volume"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Window.ShowDebug {
					t.Error("expected debug overlay with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "asset flags",
			setup: func() {
				*flagAssets = "/data"
				*flagAct = "Zone/Act3.txt"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Assets.Root != "/data" || cfg.Assets.ActFile != "Zone/Act3.txt" {
					t.Errorf("unexpected assets %+v", cfg.Assets)
				}
			},
			teardown: func() {
				*flagAssets = ""
				*flagAct = ""
			},
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "mute flag",
			setup: func() { *flagMute = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Audio.Muted {
					t.Error("expected audio muted")
				}
			},
			teardown: func() { *flagMute = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Assets.ActFile = "ChemicalPlantZone/Act1.txt"
	cfg.Physics.Gravity = 0.25

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("saved config did not round trip:\n%+v\n%+v", loaded, cfg)
	}
}
