package thumbnail

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/gallery"
)

// DefaultCacheSize bounds the number of cached previews.
const DefaultCacheSize = 64

// Cache memoizes previews keyed by the page content. The oldest entry is
// evicted when the cache is full.
type Cache struct {
	next gallery.Previewer
	size int

	mu      sync.Mutex
	entries map[[sha256.Size]byte][]byte
	order   [][sha256.Size]byte
}

var _ gallery.Previewer = (*Cache)(nil)

// NewCache wraps next with a preview cache of size entries.
func NewCache(next gallery.Previewer, size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		next:    next,
		size:    size,
		entries: make(map[[sha256.Size]byte][]byte, size),
	}
}

// Preview returns the cached image for page or renders and stores it. The
// returned slice is a copy the caller may modify.
func (c *Cache) Preview(ctx context.Context, page string) ([]byte, error) {
	if c == nil || c.next == nil {
		return nil, export.NewError(export.KindNotImpl, "previewer not configured", nil)
	}
	key := sha256.Sum256([]byte(page))

	c.mu.Lock()
	if img, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return append([]byte(nil), img...), nil
	}
	c.mu.Unlock()

	img, err := c.next.Preview(ctx, page)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.size {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = append([]byte(nil), img...)
	return img, nil
}

// Len returns the number of cached previews.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
