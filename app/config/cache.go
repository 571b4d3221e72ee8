package config

import (
	"log/slog"
	"sync"
)

// Cache holds the current locale endpoints in memory. The watcher reloads
// it when the discovery collaborator rewrites the file; readers always see
// a complete snapshot.
type Cache struct {
	path    string
	mu      sync.RWMutex
	locales map[string]string
}

func NewCache(path string) *Cache {
	return &Cache{
		path:    path,
		locales: make(map[string]string),
	}
}

// Run performs the initial load.
func (c *Cache) Run() error {
	return c.Reload()
}

func (c *Cache) Reload() error {
	endpoints, err := Load(c.path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.locales = endpoints
	c.mu.Unlock()

	slog.Debug("Locale endpoints loaded", "count", len(endpoints))
	return nil
}

func (c *Cache) Path() string {
	return c.path
}

// GetEndpoints returns a copy of the current locale → URL map.
func (c *Cache) GetEndpoints() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	endpoints := make(map[string]string, len(c.locales))
	for k, v := range c.locales {
		endpoints[k] = v
	}
	return endpoints
}

func (c *Cache) GetURL(locale string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.locales[locale]
	return u, ok
}

func (c *Cache) Has(locale string) bool {
	_, ok := c.GetURL(locale)
	return ok
}

func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.locales)
}
