// Package assets handles game asset loading and caching.
package assets

import (
	"fmt"
	"image"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/project-tails/pkg/formats"
)

// Catalog holds every image of the asset tree and the entity animation table.
// It is created once at startup and passed to whatever needs to look up art.
type Catalog struct {
	fsys fs.FS
	log  *zap.Logger

	mu       sync.RWMutex
	images   map[string]image.Image
	entities formats.EntityData

	cache *Cache
}

// NewCatalog creates an empty catalog reading from fsys.
func NewCatalog(fsys fs.FS, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		fsys:     fsys,
		log:      log,
		images:   make(map[string]image.Image),
		entities: make(formats.EntityData),
		cache:    NewCache(),
	}
}

// ImageName returns the catalog key of an image file: its path relative to
// the walk root with the extension removed.
func ImageName(root, file string) string {
	rel := strings.TrimPrefix(file, root)
	rel = strings.TrimPrefix(rel, "/")
	return strings.TrimSuffix(rel, path.Ext(rel))
}

// LoadImages walks dir and decodes every .png and .bmp file into the catalog.
// It returns the number of images added.
func (c *Catalog) LoadImages(dir string) (int, error) {
	root := path.Clean(dir)
	if root == "." {
		root = ""
	}

	walkRoot := root
	if walkRoot == "" {
		walkRoot = "."
	}

	count := 0
	err := fs.WalkDir(c.fsys, walkRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsImageFile(p) {
			return nil
		}

		img, err := c.decodeFile(p)
		if err != nil {
			return err
		}
		c.AddImage(ImageName(root, p), img)
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("loading images from %s: %w", walkRoot, err)
	}

	c.log.Info("images loaded", zap.Int("count", count), zap.String("dir", walkRoot))
	return count, nil
}

func (c *Catalog) decodeFile(name string) (image.Image, error) {
	data, err := c.ReadFile(name)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(name, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// LoadImage decodes a single image file and returns it without registering it.
func (c *Catalog) LoadImage(name string) (image.Image, error) {
	return c.decodeFile(name)
}

// AddImage registers an image under name, replacing any previous image.
func (c *Catalog) AddImage(name string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[name] = img
}

// Image returns the image registered under name.
func (c *Catalog) Image(name string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[name]
	return img, ok
}

// ImageNames returns all image names in sorted order.
func (c *Catalog) ImageNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.images))
	for name := range c.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadEntityData parses an entity data table and merges it into the catalog.
func (c *Catalog) LoadEntityData(name string) error {
	data, err := c.ReadFile(name)
	if err != nil {
		return err
	}
	ed, err := formats.ParseEntityData(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	c.mu.Lock()
	for kind, anims := range ed {
		c.entities[kind] = anims
	}
	c.mu.Unlock()

	c.log.Info("entity data loaded", zap.String("file", name), zap.Int("kinds", len(ed)))
	return nil
}

// Animations returns the animations of an entity kind.
func (c *Catalog) Animations(kind string) ([]formats.AnimationDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	anims, ok := c.entities[kind]
	return anims, ok
}

// HasKind reports whether kind has an entity data record.
func (c *Catalog) HasKind(kind string) bool {
	_, ok := c.Animations(kind)
	return ok
}

// Kinds returns the known entity kinds in sorted order.
func (c *Catalog) Kinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entities.Kinds()
}

// ReadFile returns the raw contents of a file, caching it for later reads.
func (c *Catalog) ReadFile(name string) ([]byte, error) {
	if data, ok := c.cache.Get(name); ok {
		return data, nil
	}

	data, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	c.cache.Set(name, data)
	return data, nil
}

// FS returns the file system the catalog reads from.
func (c *Catalog) FS() fs.FS {
	return c.fsys
}

// Close drops all cached data.
func (c *Catalog) Close() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.entities = make(formats.EntityData)
	c.mu.Unlock()
	c.cache.Clear()
}

// CacheStats returns file cache hits and misses.
func (c *Catalog) CacheStats() (hits, misses int) {
	return c.cache.Stats()
}

// Cache is a simple in-memory cache for raw file contents.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
