// Package game runs the main loop: input, fixed-step simulation, audio and
// drawing.
package game

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/project-tails/internal/assets"
	"github.com/Faultbox/project-tails/internal/config"
	"github.com/Faultbox/project-tails/internal/engine/audio"
	"github.com/Faultbox/project-tails/internal/engine/debug"
	"github.com/Faultbox/project-tails/internal/engine/input"
	"github.com/Faultbox/project-tails/internal/engine/renderer"
	"github.com/Faultbox/project-tails/internal/engine/window"
	"github.com/Faultbox/project-tails/internal/game/world"
	"github.com/Faultbox/project-tails/internal/level"
	"github.com/Faultbox/project-tails/pkg/math"
)

// Function keys.
const (
	debugKey      = sdl.SCANCODE_F3  // Toggles the debug overlay
	screenshotKey = sdl.SCANCODE_F12 // Saves the next frame as PNG
)

// screenshotDir receives screenshots, relative to the working directory.
const screenshotDir = "screenshots"

// Game is the main game instance.
type Game struct {
	cfg     *config.Config
	log     *zap.Logger
	catalog *assets.Catalog

	running   bool
	showDebug bool
	window    *window.Window
	renderer  *renderer.Renderer
	input     *input.Input
	audio     *audio.Manager
	world     *world.World
	clock     *world.Clock
	scene     *scene

	screenshots    *debug.ScreenshotCapture
	wantScreenshot bool
}

// New opens the window and prepares a loaded level for play.
func New(cfg *config.Config, catalog *assets.Catalog, lvl *level.Level, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("initializing game",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	g := &Game{
		cfg:       cfg,
		log:       log,
		catalog:   catalog,
		showDebug: cfg.Window.ShowDebug,
		clock:     world.NewClock(cfg.Window.TickRate),

		screenshots: debug.NewScreenshotCapture(screenshotDir, "tails"),
	}

	// Entity animations only resolve when entity data was loaded.
	var anims world.AnimationSource
	if len(catalog.Kinds()) > 0 {
		anims = catalog
	}

	var err error
	g.world, err = world.New(lvl, anims, world.Options{
		Physics:      cfg.Physics,
		PlayerSprite: cfg.Assets.PlayerSprite,
		Spawn:        math.Vec2{},
		ViewWidth:    cfg.Window.Width,
		ViewHeight:   cfg.Window.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create world: %w", err)
	}

	g.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	g.renderer, err = renderer.New(g.window.Renderer(), renderer.Config{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
	})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.scene = newScene(g.renderer, catalog, log.Named("scene"))
	if err := g.scene.loadBlocks(lvl, cfg.Assets); err != nil {
		g.Close()
		return nil, err
	}

	g.input = input.New(nil)
	g.audio = newAudio(cfg, catalog, log.Named("audio"))

	log.Info("game initialized successfully",
		zap.String("level", lvl.Act.Name),
		zap.Int("entities", len(g.world.Entities)),
	)
	return g, nil
}

// newAudio starts audio playback. Audio problems never stop the game.
func newAudio(cfg *config.Config, catalog *assets.Catalog, log *zap.Logger) *audio.Manager {
	m := audio.New(cfg.Audio, log)
	if err := m.Init(); err != nil {
		log.Warn("audio disabled", zap.Error(err))
		return m
	}

	n := m.LoadEffects(catalog.FS(), cfg.Audio.SoundDir,
		world.EventJumped.String(),
		world.EventLanded.String(),
	)
	log.Debug("sound effects loaded", zap.Int("count", n))

	if cfg.Audio.Music != "" {
		data, err := catalog.ReadFile(cfg.Audio.Music)
		if err != nil {
			log.Warn("music not found", zap.String("file", cfg.Audio.Music), zap.Error(err))
			return m
		}
		if err := m.PlayMusic(cfg.Audio.Music, data); err != nil {
			log.Warn("music not played", zap.String("file", cfg.Audio.Music), zap.Error(err))
		}
	}
	return m
}

// Run runs the game loop until the window closes or Escape is pressed.
func (g *Game) Run() error {
	g.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	g.log.Info("starting game loop", zap.Duration("tick", g.clock.Step()))

	for g.running {
		now := time.Now()
		elapsed := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()

		// 2. Run due fixed ticks
		for range g.clock.Advance(elapsed) {
			g.update()
		}

		// 3. Render
		g.renderer.Begin()
		g.scene.draw(g.world, g.showDebug)
		if g.wantScreenshot {
			g.wantScreenshot = false
			g.screenshot()
		}
		g.renderer.End()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			g.log.Debug("fps", zap.Int("count", frameCount), zap.Duration("frame", elapsed))
			if g.showDebug {
				p := g.world.Player
				g.window.SetTitle(fmt.Sprintf("%s | %d fps | (%.0f, %.0f) angle %d",
					g.cfg.Window.Title, frameCount, p.Position.X, p.Position.Y, p.Angle))
			}
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	g.log.Info("game loop stopped", zap.Uint64("ticks", g.world.Ticks()))
	return nil
}

func (g *Game) handleEvents() {
	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			g.renderer.Resize(event.Width, event.Height)
			g.world.Camera.Resize(event.Width, event.Height)
		case input.EventKeyDown:
			if event.Repeat {
				continue
			}
			switch event.Key {
			case debugKey:
				g.showDebug = !g.showDebug
				if !g.showDebug {
					g.window.SetTitle(g.cfg.Window.Title)
				}
			case screenshotKey:
				g.wantScreenshot = true
			}
		}
	}
}

func (g *Game) screenshot() {
	img, err := g.renderer.ReadPixels()
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	name, err := g.screenshots.Capture(img)
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("file", name))
}

// update runs one fixed tick.
func (g *Game) update() {
	events := g.world.Tick(g.clock.Step(), g.input.Keys())
	g.input.BeginTick()

	for _, ev := range events {
		g.log.Debug("player event", zap.Stringer("event", ev))
		if !g.audio.HasEffect(ev.String()) {
			continue
		}
		if err := g.audio.PlayEffect(ev.String()); err != nil {
			g.log.Debug("effect not played", zap.Stringer("event", ev), zap.Error(err))
		}
	}
}

// Close releases audio, textures and the window.
func (g *Game) Close() {
	g.log.Info("closing game")

	if g.audio != nil {
		g.audio.Close()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
