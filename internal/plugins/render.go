package plugins

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-xtheme/internal/cache"
	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// CellRenderer renders layout cells through the registry. It never returns
// plugin failures to the caller.
type CellRenderer struct {
	registry *Registry
	cache    interfaces.KeyValueCache
	logger   interfaces.Logger
	onError  func(*RenderError)
}

// CellRendererOption configures a CellRenderer.
type CellRendererOption func(*CellRenderer)

// WithCache enables caching for Cacheable plugins.
func WithCache(kv interfaces.KeyValueCache) CellRendererOption {
	return func(r *CellRenderer) {
		r.cache = kv
	}
}

// WithLogger sets the logger used for suppressed failures.
func WithLogger(logger interfaces.Logger) CellRendererOption {
	return func(r *CellRenderer) {
		r.logger = logging.Ensure(logger)
	}
}

// WithErrorHook observes every suppressed RenderError.
func WithErrorHook(fn func(*RenderError)) CellRendererOption {
	return func(r *CellRenderer) {
		r.onError = fn
	}
}

// NewCellRenderer constructs a renderer for registry.
func NewCellRenderer(registry *Registry, opts ...CellRendererOption) *CellRenderer {
	r := &CellRenderer{
		registry: registry,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Registry returns the registry backing the renderer.
func (r *CellRenderer) Registry() *Registry {
	return r.registry
}

// UnknownPluginMarker is emitted for cells whose plugin is not registered.
func UnknownPluginMarker(id string) string {
	return fmt.Sprintf("<!-- xtheme: unknown plugin %q -->", commentSafe(id))
}

// FailedPluginMarker is emitted for cells whose plugin failed to render.
func FailedPluginMarker(id string) string {
	return fmt.Sprintf("<!-- xtheme: plugin %q failed -->", commentSafe(id))
}

// RenderCell returns the markup for cell. Empty cells render nothing.
func (r *CellRenderer) RenderCell(ctx context.Context, cell *layouts.Cell, rc *renderctx.Context) string {
	if cell.IsEmpty() {
		return ""
	}
	id := cell.Plugin

	factory, ok := r.registry.Resolve(id)
	if !ok {
		r.logger.Debug("plugins.render.unknown", "plugin", id)
		return UnknownPluginMarker(id)
	}

	markup, err := r.render(ctx, id, factory, cell.Config, rc)
	if err != nil {
		renderErr := &RenderError{Plugin: id, Cause: err}
		r.logger.Error("plugins.render.failed", "plugin", id, "error", err)
		if r.onError != nil {
			r.onError(renderErr)
		}
		return FailedPluginMarker(id)
	}
	return markup
}

func (r *CellRenderer) render(ctx context.Context, id string, factory Factory, config map[string]any, rc *renderctx.Context) (markup string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			markup = ""
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()

	plugin, err := factory(cloneConfig(config))
	if err != nil {
		return "", err
	}
	if plugin == nil {
		return "", nil
	}

	if validator, ok := plugin.(ContextValidator); ok && !validator.IsContextValid(rc) {
		return "", nil
	}

	cacheable, ok := plugin.(Cacheable)
	if !ok || r.cache == nil || cacheable.CacheTTL() <= 0 {
		return plugin.Render(ctx, rc)
	}

	key := r.cacheKey(ctx, id, cacheable.CacheKey(rc), rc)
	if cached, hit, cacheErr := r.cache.Get(ctx, key); cacheErr != nil {
		r.logger.Warn("plugins.cache.get_failed", "plugin", id, "error", cacheErr)
	} else if hit {
		return string(cached), nil
	}

	markup, err = plugin.Render(ctx, rc)
	if err != nil {
		return "", err
	}
	if setErr := r.cache.Set(ctx, key, []byte(markup), cacheable.CacheTTL()); setErr != nil {
		r.logger.Warn("plugins.cache.set_failed", "plugin", id, "error", setErr)
	}
	return markup, nil
}

func (r *CellRenderer) cacheKey(ctx context.Context, id, pluginKey string, rc *renderctx.Context) string {
	tenant := rc.TenantID()
	theme := ""
	if rc != nil {
		theme = rc.Theme
	}
	version, err := r.cache.Version(ctx, cache.ThemeScope(tenant, theme))
	if err != nil {
		r.logger.Warn("plugins.cache.version_failed", "plugin", id, "error", err)
	}
	return fmt.Sprintf("plugin:%s:%s:v%d:%s:%s", tenant, theme, version, id, pluginKey)
}

func commentSafe(value string) string {
	return strings.ReplaceAll(html.EscapeString(value), "--", "&#45;&#45;")
}

func cloneConfig(config map[string]any) map[string]any {
	cell := &layouts.Cell{Config: config}
	return cell.Clone().Config
}
