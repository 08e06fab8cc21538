package rendering

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-xtheme/internal/themes"
	"github.com/goliatone/go-xtheme/internal/views"
)

type requestCacheKey struct{}

// requestCache memoises the theme and view configurations loaded while one
// request renders its placeholders.
type requestCache struct {
	mu      sync.Mutex
	themes  map[string]themes.Theme
	configs map[string]*views.ViewConfig
}

// WithRequestCache returns a context that memoises lookups for the lifetime of
// a request. Contexts already carrying a cache are returned unchanged.
func WithRequestCache(ctx context.Context) context.Context {
	if requestCacheFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, requestCacheKey{}, &requestCache{
		themes:  map[string]themes.Theme{},
		configs: map[string]*views.ViewConfig{},
	})
}

func requestCacheFrom(ctx context.Context) *requestCache {
	if ctx == nil {
		return nil
	}
	cache, _ := ctx.Value(requestCacheKey{}).(*requestCache)
	return cache
}

func (c *requestCache) theme(tenant string) (themes.Theme, bool) {
	if c == nil {
		return themes.Theme{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	theme, ok := c.themes[tenant]
	return theme, ok
}

func (c *requestCache) storeTheme(tenant string, theme themes.Theme) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.themes[tenant] = theme
}

func (c *requestCache) config(key views.Key, draft bool) (*views.ViewConfig, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	vc, ok := c.configs[configKey(key, draft)]
	return vc, ok
}

func (c *requestCache) storeConfig(key views.Key, draft bool, vc *views.ViewConfig) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[configKey(key, draft)] = vc
}

func configKey(key views.Key, draft bool) string {
	return fmt.Sprintf("%s|draft=%t", key, draft)
}
