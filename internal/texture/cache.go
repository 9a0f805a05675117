package texture

import (
	"image"
	"sync"

	"github.com/sirupsen/logrus"
)

// Resolver resolves a texture name to a decoded image, or nil.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Cache is a concurrency-safe Resolver that decodes each file at most once.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA
	index *Index
}

// NewCache creates a cache over the files of index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*image.NRGBA),
		index: index,
	}
}

// Resolve loads and caches a texture by name. Unknown or undecodable
// textures resolve to nil, and are not retried.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		logrus.WithField("texture", texName).Debug("texture not indexed")
		return nil
	}

	c.mu.RLock()
	img, hit := c.items[path]
	c.mu.RUnlock()
	if hit {
		return img
	}

	img, err := LoadTexture(path)
	if err != nil {
		logrus.WithError(err).WithField("texture", texName).Warn("texture load failed")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, hit := c.items[path]; hit {
		return cached
	}
	c.items[path] = img
	return img
}

// Len returns the number of textures loaded so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
