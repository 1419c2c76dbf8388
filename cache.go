package mdpreview

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/alnah/go-mdpreview/internal/pipeline"
)

// DefaultCacheSize is the number of previews a Renderer memoizes.
const DefaultCacheSize = 128

// previewCache is a bounded LRU of Preview payloads. A nil cache is disabled.
type previewCache struct {
	mu      sync.Mutex
	entries *lru.Cache
}

func newPreviewCache(size int) *previewCache {
	if size <= 0 {
		return nil
	}
	return &previewCache{entries: lru.New(size)}
}

func (c *previewCache) get(key string) (Preview, bool) {
	if c == nil {
		return Preview{}, false
	}
	c.mu.Lock()
	v, ok := c.entries.Get(key)
	c.mu.Unlock()
	if !ok {
		return Preview{}, false
	}
	return clonePreview(v.(Preview)), true
}

func (c *previewCache) add(key string, p Preview) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries.Add(key, clonePreview(p))
	c.mu.Unlock()
}

func (c *previewCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// clonePreview copies the headings so callers never share a backing array
// with the cache.
func clonePreview(p Preview) Preview {
	p.Metadata.Headings = slices.Clone(p.Metadata.Headings)
	return p
}

// previewKey identifies a preview by content and every option that affects
// its output. Options carrying a Highlight func are never keyed.
func previewKey(markdown string, opts pipeline.RenderOptions, wordsPerMinute int) string {
	h := sha256.New()
	fmt.Fprintf(h, "breaks=%t;gfm=%t;sanitize=%t;origin=%s;wpm=%d\x00",
		opts.Breaks, opts.GFM, opts.Sanitize, opts.Origin, wordsPerMinute)
	h.Write([]byte(markdown))
	return hex.EncodeToString(h.Sum(nil))
}
