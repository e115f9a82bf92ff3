// Package config handles game configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/multierr"
)

// Config holds all game settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Assets  AssetsConfig  `yaml:"assets"`
	Physics PhysicsConfig `yaml:"physics"`
	Audio   AudioConfig   `yaml:"audio"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	TickRate   int    `yaml:"tick_rate"` // Fixed update rate in Hz
	ShowDebug  bool   `yaml:"show_debug"`
}

// AssetsConfig holds level and asset paths. All paths except Root are
// relative to Root and use forward slashes.
type AssetsConfig struct {
	Root           string `yaml:"root"`
	ActFile        string `yaml:"act_file"`
	BlockDir       string `yaml:"block_dir"`    // Empty: derived from the act block path
	BlockPrefix    string `yaml:"block_prefix"` // Empty: derived from the act block path
	CollisionMap   string `yaml:"collision_map"`
	CollisionLayer int    `yaml:"collision_layer"`
	TilesetImage   string `yaml:"tileset_image"` // Empty: the act tileset
	TilesPerRow    int    `yaml:"tiles_per_row"`
	EntityData     string `yaml:"entity_data"`
	PlayerSprite   string `yaml:"player_sprite"`
}

// PhysicsConfig holds player body constants, in pixels and pixels per tick.
type PhysicsConfig struct {
	Gravity      float64 `yaml:"gravity"`
	MaxFallSpeed float64 `yaml:"max_fall_speed"`
	Acceleration float64 `yaml:"acceleration"`
	Friction     float64 `yaml:"friction"`
	JumpVelocity float64 `yaml:"jump_velocity"`
	GroundRadius float64 `yaml:"ground_radius"`
	FloorLimit   float64 `yaml:"floor_limit"`
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	MasterVolume float64 `yaml:"master_volume"`
	MusicVolume  float64 `yaml:"music_volume"`
	SFXVolume    float64 `yaml:"sfx_volume"`
	Muted        bool    `yaml:"muted"`
	Music        string  `yaml:"music"`     // Relative to the asset root
	SoundDir     string  `yaml:"sound_dir"` // Holds <name>.wav effects
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Project Tails",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			TickRate:   60,
		},
		Assets: AssetsConfig{
			Root:         "assets",
			ActFile:      "EmeraldHillZone/Act1.txt",
			CollisionMap: "Collision.png",
			TilesPerRow:  20,
			EntityData:   "EntityData.txt",
			PlayerSprite: "Tails",
		},
		Physics: PhysicsConfig{
			Gravity:      0.21875,
			MaxFallSpeed: 16,
			Acceleration: 0.05,
			Friction:     0.02,
			JumpVelocity: -5,
			GroundRadius: 5,
			FloorLimit:   1000,
		},
		Audio: AudioConfig{
			MasterVolume: 0.8,
			MusicVolume:  0.7,
			SFXVolume:    0.8,
			Muted:        false,
			SoundDir:     "Sound",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.TickRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("tick rate %d must be positive", c.Window.TickRate))
	}
	if c.Assets.ActFile == "" {
		err = multierr.Append(err, fmt.Errorf("assets.act_file is required"))
	}
	if c.Assets.CollisionMap == "" {
		err = multierr.Append(err, fmt.Errorf("assets.collision_map is required"))
	}
	if c.Assets.TilesPerRow <= 0 {
		err = multierr.Append(err, fmt.Errorf("assets.tiles_per_row %d must be positive", c.Assets.TilesPerRow))
	}
	if c.Assets.CollisionLayer < 0 || c.Assets.CollisionLayer > 1 {
		err = multierr.Append(err, fmt.Errorf("assets.collision_layer %d must be 0 or 1", c.Assets.CollisionLayer))
	}
	if c.Physics.MaxFallSpeed <= 0 {
		err = multierr.Append(err, fmt.Errorf("physics.max_fall_speed %v must be positive", c.Physics.MaxFallSpeed))
	}
	if c.Physics.Friction < 0 {
		err = multierr.Append(err, fmt.Errorf("physics.friction %v must not be negative", c.Physics.Friction))
	}
	for name, v := range map[string]float64{
		"master_volume": c.Audio.MasterVolume,
		"music_volume":  c.Audio.MusicVolume,
		"sfx_volume":    c.Audio.SFXVolume,
	} {
		if v < 0 || v > 1 {
			err = multierr.Append(err, fmt.Errorf("audio.%s %v must be within [0, 1]", name, v))
		}
	}
	return err
}
