// Package imagecache caches the image variant URLs of entities.
package imagecache

import (
	"context"
	"sync"
	"time"

	"calcio-stop/internal/model"
)

// Cache stores image lists by key until they expire or are invalidated.
type Cache interface {
	// Get returns the cached images for key and whether they were present.
	Get(ctx context.Context, key string) ([]model.Image, bool, error)

	Set(ctx context.Context, key string, images []model.Image) error

	// Invalidate drops key so the next Get misses.
	Invalidate(ctx context.Context, key string) error
}

type memoryEntry struct {
	images    []model.Image
	expiresAt time.Time
}

// MemoryCache is an in-process Cache with a fixed TTL.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an in-process cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]model.Image, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if current, still := c.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	images := make([]model.Image, len(entry.images))
	copy(images, entry.images)
	return images, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, images []model.Image) error {
	stored := make([]model.Image, len(images))
	copy(stored, images)

	c.mu.Lock()
	c.entries[key] = memoryEntry{images: stored, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
