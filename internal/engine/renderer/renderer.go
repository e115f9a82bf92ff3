// Package renderer draws textured sprites and debug shapes with the SDL2 2D
// renderer.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/project-tails/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor color.NRGBA
}

// DefaultClearColor is the dark grey drawn behind the level.
var DefaultClearColor = color.NRGBA{R: 20, G: 20, B: 20, A: 255}

// Texture is an uploaded image.
type Texture struct {
	Width  int
	Height int

	tex *sdl.Texture
}

// Bounds returns the texture rectangle at the origin.
func (t *Texture) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.Width, t.Height)
}

// Renderer owns the textures and issues draw calls.
type Renderer struct {
	config   Config
	sdl      *sdl.Renderer
	textures map[string]*Texture
}

// New creates a renderer on top of an SDL renderer owned by the window.
func New(r *sdl.Renderer, cfg Config) (*Renderer, error) {
	if r == nil {
		return nil, fmt.Errorf("renderer: nil SDL renderer")
	}
	if cfg.ClearColor == (color.NRGBA{}) {
		cfg.ClearColor = DefaultClearColor
	}
	if err := r.SetDrawBlendMode(sdl.BLENDMODE_BLEND); err != nil {
		return nil, fmt.Errorf("set blend mode: %w", err)
	}

	info, err := r.GetInfo()
	if err == nil {
		logger.Info("SDL renderer initialized",
			zap.String("name", info.Name),
			zap.Int("width", cfg.Width),
			zap.Int("height", cfg.Height),
		)
	}

	return &Renderer{
		config:   cfg,
		sdl:      r,
		textures: make(map[string]*Texture),
	}, nil
}

// Close destroys every uploaded texture.
func (r *Renderer) Close() {
	logger.Info("closing renderer", zap.Int("textures", len(r.textures)))
	for name, t := range r.textures {
		t.tex.Destroy()
		delete(r.textures, name)
	}
}

// Resize updates the viewport size after a window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	logger.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Size returns the viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Begin clears the frame.
func (r *Renderer) Begin() {
	c := r.config.ClearColor
	_ = r.sdl.SetDrawColor(c.R, c.G, c.B, c.A)
	_ = r.sdl.Clear()
}

// End presents the frame.
func (r *Renderer) End() {
	r.sdl.Present()
}

// Upload converts img to a texture and stores it under name, replacing any
// previous texture of that name.
func (r *Renderer) Upload(name string, img image.Image) (*Texture, error) {
	rgba := ToNRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("upload %s: empty image", name)
	}

	// ABGR8888 is R, G, B, A in memory on little-endian hosts.
	tex, err := r.sdl.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STATIC, int32(w), int32(h))
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", name, err)
	}
	if err := tex.Update(nil, unsafe.Pointer(&rgba.Pix[0]), rgba.Stride); err != nil {
		tex.Destroy()
		return nil, fmt.Errorf("update texture %s: %w", name, err)
	}
	if err := tex.SetBlendMode(sdl.BLENDMODE_BLEND); err != nil {
		tex.Destroy()
		return nil, fmt.Errorf("blend mode %s: %w", name, err)
	}

	if old, ok := r.textures[name]; ok {
		old.tex.Destroy()
	}
	t := &Texture{Width: w, Height: h, tex: tex}
	r.textures[name] = t
	return t, nil
}

// Texture returns the texture uploaded under name.
func (r *Renderer) Texture(name string) (*Texture, bool) {
	t, ok := r.textures[name]
	return t, ok
}

// Draw copies the src part of t to screen position (x, y) at its natural size,
// mirrored horizontally when flipX is set.
func (r *Renderer) Draw(t *Texture, src image.Rectangle, x, y int, flipX bool) {
	dst := image.Rect(x, y, x+src.Dx(), y+src.Dy())
	flip := sdl.FLIP_NONE
	if flipX {
		flip = sdl.FLIP_HORIZONTAL
	}
	if err := r.sdl.CopyEx(t.tex, sdlRect(src), sdlRect(dst), 0, nil, flip); err != nil {
		logger.Debug("draw failed", zap.Error(err))
	}
}

// DrawRect outlines rect.
func (r *Renderer) DrawRect(rect image.Rectangle, c color.NRGBA) {
	_ = r.sdl.SetDrawColor(c.R, c.G, c.B, c.A)
	_ = r.sdl.DrawRect(sdlRect(rect))
}

// FillRect fills rect.
func (r *Renderer) FillRect(rect image.Rectangle, c color.NRGBA) {
	_ = r.sdl.SetDrawColor(c.R, c.G, c.B, c.A)
	_ = r.sdl.FillRect(sdlRect(rect))
}

// DrawLine draws a line between two screen points.
func (r *Renderer) DrawLine(x1, y1, x2, y2 int, c color.NRGBA) {
	_ = r.sdl.SetDrawColor(c.R, c.G, c.B, c.A)
	_ = r.sdl.DrawLine(int32(x1), int32(y1), int32(x2), int32(y2))
}

// ReadPixels copies the current frame. Call it before End.
func (r *Renderer) ReadPixels() (*image.NRGBA, error) {
	w, h, err := r.sdl.GetOutputSize()
	if err != nil {
		return nil, fmt.Errorf("output size: %w", err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	if len(img.Pix) == 0 {
		return img, nil
	}
	if err := r.sdl.ReadPixels(nil, sdl.PIXELFORMAT_ABGR8888, unsafe.Pointer(&img.Pix[0]), img.Stride); err != nil {
		return nil, fmt.Errorf("read pixels: %w", err)
	}
	// The frame buffer alpha is undefined.
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img, nil
}

// ToNRGBA returns img as a tightly packed NRGBA image at the origin.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func sdlRect(r image.Rectangle) *sdl.Rect {
	return &sdl.Rect{X: int32(r.Min.X), Y: int32(r.Min.Y), W: int32(r.Dx()), H: int32(r.Dy())}
}
