package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	// Decoders for uploaded images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/halo"
)

// DefaultWorkers is the number of background decoders.
const DefaultWorkers = 4

// DefaultRetry is how long a key that failed to load is left alone before
// lookups queue it again.
const DefaultRetry = 30 * time.Second

// Cache holds decoded images in memory. Image never blocks; images are
// loaded in the background by Load and Preload.
type Cache struct {
	store *Store

	mu      sync.RWMutex
	images  map[string]image.Image
	pending map[string]bool
	failed  map[string]time.Time
	retry   time.Duration

	jobs chan string
	wg   sync.WaitGroup
	stop context.CancelFunc
	ctx  context.Context
}

// NewCache starts a cache over s with the given number of decoders.
func NewCache(s *Store, workers int) *Cache {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		store:   s,
		images:  make(map[string]image.Image),
		pending: make(map[string]bool),
		failed:  make(map[string]time.Time),
		retry:   DefaultRetry,
		jobs:    make(chan string, 64),
		stop:    cancel,
		ctx:     ctx,
	}
	for range workers {
		c.wg.Add(1)
		go c.worker()
	}
	return c
}

func (c *Cache) worker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case key := <-c.jobs:
			img, err := c.decode(key)
			c.mu.Lock()
			delete(c.pending, key)
			if err == nil {
				c.images[key] = img
			} else {
				c.failed[key] = time.Now()
			}
			c.mu.Unlock()
			if err != nil {
				halo.Logger().Warn("assets: load failed", "key", key, "err", err)
			}
		}
	}
}

func (c *Cache) decode(key string) (image.Image, error) {
	data, err := c.store.Get(c.ctx, key)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", key, err)
	}
	halo.Logger().Debug("assets: loaded", "key", key, "format", format)
	return img, nil
}

// Image returns the resident image for key. ok is false while the image is
// not loaded; a load is queued unless one is pending or the key failed
// within the retry interval.
func (c *Cache) Image(key string) (image.Image, bool) {
	c.mu.RLock()
	img, ok := c.images[key]
	c.mu.RUnlock()
	if !ok && key != "" {
		c.Load(key)
	}
	return img, ok
}

// Load queues key for background loading. It does not block: when the
// queue is full the request is dropped and retried on the next lookup.
func (c *Cache) Load(key string) {
	c.mu.Lock()
	if _, ok := c.images[key]; ok || c.pending[key] {
		c.mu.Unlock()
		return
	}
	if at, ok := c.failed[key]; ok && time.Since(at) < c.retry {
		c.mu.Unlock()
		return
	}
	delete(c.failed, key)
	c.pending[key] = true
	c.mu.Unlock()

	select {
	case c.jobs <- key:
	default:
		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()
	}
}

// Preload decodes every stored image synchronously.
func (c *Cache) Preload(ctx context.Context) error {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := c.decode(k)
		if err != nil {
			halo.Logger().Warn("assets: preload skipped", "key", k, "err", err)
			continue
		}
		c.mu.Lock()
		c.images[k] = img
		delete(c.failed, k)
		c.mu.Unlock()
	}
	return nil
}

// Put stores data and makes it resident.
func (c *Cache) Put(ctx context.Context, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("assets: decode: %w", err)
	}
	key, err := c.store.Put(ctx, data)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.images[key] = img
	delete(c.failed, key)
	c.mu.Unlock()
	return key, nil
}

// Len returns the number of resident images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Close stops the decoders.
func (c *Cache) Close() {
	c.stop()
	c.wg.Wait()
}
