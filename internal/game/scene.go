package game

import (
	"fmt"
	"image"
	"image/color"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/project-tails/internal/assets"
	"github.com/Faultbox/project-tails/internal/config"
	"github.com/Faultbox/project-tails/internal/engine/debug"
	"github.com/Faultbox/project-tails/internal/engine/renderer"
	"github.com/Faultbox/project-tails/internal/game/world"
	"github.com/Faultbox/project-tails/internal/level"
	"github.com/Faultbox/project-tails/pkg/math"
	"github.com/Faultbox/project-tails/pkg/terrain"
)

// Debug overlay colors.
var (
	gridColor   = color.NRGBA{R: 80, G: 80, B: 160, A: 160}
	markerColor = color.NRGBA{R: 255, G: 0, B: 255, A: 200}
	probeColor  = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
	bodyColor   = color.NRGBA{R: 255, G: 255, B: 0, A: 200}
	solidColor  = color.NRGBA{R: 255, G: 64, B: 64, A: 96}
)

// scene draws a world through the camera.
type scene struct {
	r       *renderer.Renderer
	catalog *assets.Catalog
	log     *zap.Logger
	lvl     *level.Level
	layer   int // Collision layer shown by the debug overlay

	// missing remembers sprite sheets that could not be uploaded.
	missing map[string]bool
}

func newScene(r *renderer.Renderer, catalog *assets.Catalog, log *zap.Logger) *scene {
	return &scene{
		r:       r,
		catalog: catalog,
		log:     log,
		missing: make(map[string]bool),
	}
}

// blockTextureName is the texture key of composed block id.
func blockTextureName(id int) string {
	return "BLOCK" + strconv.Itoa(id)
}

// tilesetName returns the catalog name of the level tileset.
func tilesetName(act string, cfg config.AssetsConfig) string {
	name := cfg.TilesetImage
	if name == "" {
		name = strings.TrimSpace(act)
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

// loadBlocks composes every block of the level and uploads it. A missing
// tileset leaves blocks undrawn.
func (s *scene) loadBlocks(lvl *level.Level, cfg config.AssetsConfig) error {
	s.lvl = lvl
	s.layer = cfg.CollisionLayer

	name := tilesetName(lvl.Act.Tileset, cfg)
	img, ok := s.catalog.Image(name)
	if !ok {
		s.log.Warn("tileset not found, blocks will not be drawn", zap.String("tileset", name))
		return nil
	}
	ts := assets.Tileset{Image: img, TilesPerRow: cfg.TilesPerRow}

	for id, block := range lvl.Blocks {
		if _, err := s.r.Upload(blockTextureName(id), assets.ComposeBlock(block, ts)); err != nil {
			return fmt.Errorf("uploading block %d: %w", id, err)
		}
	}
	s.log.Info("block textures composed",
		zap.String("tileset", name),
		zap.Int("blocks", len(lvl.Blocks)),
	)
	return nil
}

// sprite returns the texture of a sprite sheet, uploading it on first use.
func (s *scene) sprite(name string) (*renderer.Texture, bool) {
	if t, ok := s.r.Texture(name); ok {
		return t, true
	}
	if s.missing[name] {
		return nil, false
	}
	img, ok := s.catalog.Image(name)
	if !ok {
		s.log.Warn("sprite sheet not found", zap.String("sheet", name))
		s.missing[name] = true
		return nil, false
	}
	t, err := s.r.Upload(name, img)
	if err != nil {
		s.log.Warn("sprite sheet upload failed", zap.String("sheet", name), zap.Error(err))
		s.missing[name] = true
		return nil, false
	}
	return t, true
}

// draw renders blocks, entities and the player, then the debug overlay.
func (s *scene) draw(w *world.World, showDebug bool) {
	s.drawBlocks(w, showDebug)

	for _, e := range w.Entities {
		if e.Anim == nil {
			if showDebug {
				x, y := w.Camera.ToScreen(e.Position)
				s.r.DrawRect(image.Rect(x-4, y-4, x+4, y+4), markerColor)
			}
			continue
		}
		s.drawAnimation(w, e.Anim, e.Position)
	}

	p := w.Player
	var frameH int
	if t, ok := s.sprite(p.Anim.Def.Sheet); ok {
		frameH = t.Height
	}
	// The player position is the bottom of the sprite.
	top := p.Position.Sub(math.Vec2{Y: float64(frameH)})
	s.drawAnimation(w, p.Anim, top)

	if showDebug {
		s.drawCollision(w)
		s.drawPlayerDebug(w)
	}
}

// drawCollision shades the solid pixels of the debug collision layer.
func (s *scene) drawCollision(w *world.World) {
	for _, r := range debug.CollisionRects(s.lvl.Terrain, w.Camera.View(), s.layer) {
		x, y := w.Camera.ToScreen(math.Vec2{X: float64(r.Min.X), Y: float64(r.Min.Y)})
		s.r.FillRect(image.Rect(x, y, x+r.Dx(), y+r.Dy()), solidColor)
	}
}

func (s *scene) drawBlocks(w *world.World, showDebug bool) {
	grid := s.lvl.Terrain.Grid()
	for by := range grid.Height() {
		for bx := range grid.Width {
			x, y := bx*terrain.BlockSize, by*terrain.BlockSize
			bounds := image.Rect(x, y, x+terrain.BlockSize, y+terrain.BlockSize)
			if !w.Camera.Visible(bounds) {
				continue
			}
			sx, sy := w.Camera.ToScreen(math.Vec2{X: float64(x), Y: float64(y)})
			if showDebug {
				s.r.DrawRect(image.Rect(sx, sy, sx+terrain.BlockSize, sy+terrain.BlockSize), gridColor)
			}

			cell := grid.Cell(bx, by)
			if !cell.Present {
				continue
			}
			t, ok := s.r.Texture(blockTextureName(cell.BlockID))
			if !ok {
				continue
			}
			s.r.Draw(t, t.Bounds(), sx, sy, cell.Flipped())
		}
	}
}

// drawAnimation draws the current frame with its top-left corner at pos.
func (s *scene) drawAnimation(w *world.World, anim *world.Animation, pos math.Vec2) {
	t, ok := s.sprite(anim.Def.Sheet)
	if !ok {
		return
	}
	src := anim.FrameRect(t.Bounds())
	x, y := pos.Point()
	if !w.Camera.Visible(image.Rect(x, y, x+src.Dx(), y+src.Dy())) {
		return
	}
	sx, sy := w.Camera.ToScreen(pos)
	s.r.Draw(t, src, sx, sy, false)
}

// drawPlayerDebug marks the player foot point and the ground found below it.
func (s *scene) drawPlayerDebug(w *world.World) {
	p := w.Player
	px, py := w.Camera.ToScreen(p.Position)
	s.r.DrawRect(image.Rect(px-2, py-2, px+3, py+3), bodyColor)

	g, ok := s.lvl.Terrain.FindGround(p.Position, p.Physics().GroundRadius)
	if !ok {
		return
	}
	_, gy := w.Camera.ToScreen(math.Vec2{X: p.Position.X, Y: g.SurfaceY})
	r := int(p.Physics().GroundRadius)
	s.r.DrawLine(px-r, gy, px+r, gy, probeColor)
}
