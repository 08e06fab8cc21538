package plugins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-xtheme/internal/renderctx"
)

var (
	ErrPluginIdentifierRequired = errors.New("plugins: identifier is required")
	ErrPluginFactoryRequired    = errors.New("plugins: factory is required")
)

// Plugin is a renderable unit instantiated from a cell config on every render.
type Plugin interface {
	Render(ctx context.Context, rc *renderctx.Context) (string, error)
}

// Factory builds a plugin from a cell config. Factories must not retain config.
type Factory func(config map[string]any) (Plugin, error)

// ContextValidator is implemented by plugins that only render for some contexts.
type ContextValidator interface {
	IsContextValid(rc *renderctx.Context) bool
}

// Configurable is implemented by plugins exposing editor fields.
type Configurable interface {
	Fields() []Field
}

// Cacheable is implemented by plugins whose markup may be served from cache.
// A non-positive TTL disables caching for that instance.
type Cacheable interface {
	CacheKey(rc *renderctx.Context) string
	CacheTTL() time.Duration
}

// RenderError wraps a failure raised by a plugin during render. It is
// logged and suppressed at the cell boundary.
type RenderError struct {
	Plugin string
	Cause  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("plugins: render %q failed: %v", e.Plugin, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
