package edgar

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
)

// PageCache keeps fetched index pages and primary documents on disk so that
// re-running a roster does not hit the archive again for the same filing.
type PageCache struct {
	cacheDir string
}

// NewPageCache creates a cache rooted at dir.
func NewPageCache(dir string) (*PageCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &PageCache{cacheDir: dir}, nil
}

// cacheKey is the MD5 of the page URL.
func (c *PageCache) cacheKey(url string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(url)))
}

func (c *PageCache) filePath(url string) string {
	return filepath.Join(c.cacheDir, c.cacheKey(url)+".html")
}

// Get returns the cached body for url.
func (c *PageCache) Get(url string) ([]byte, bool) {
	data, err := os.ReadFile(c.filePath(url))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores the body for url.
func (c *PageCache) Set(url string, body []byte) error {
	return os.WriteFile(c.filePath(url), body, 0644)
}

// Dir returns the cache directory path.
func (c *PageCache) Dir() string {
	return c.cacheDir
}

// Clear removes all cached pages.
func (c *PageCache) Clear() error {
	return os.RemoveAll(c.cacheDir)
}
