package rendering

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/internal/plugins"
	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/internal/themes"
	"github.com/goliatone/go-xtheme/internal/variants"
	"github.com/goliatone/go-xtheme/internal/views"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// GlobalView stores placeholders a theme shares across every view.
const GlobalView = "_global"

var (
	ErrPlaceholderRequired = errors.New("rendering: placeholder name required")
	ErrContextRequired     = errors.New("rendering: render context required")
)

// ThemeSource resolves the active theme of a tenant. themes.Service satisfies it.
type ThemeSource interface {
	GetCurrentTheme(ctx context.Context, tenant string) (themes.Theme, error)
}

// ViewSource loads view configurations. views.Service satisfies it.
type ViewSource interface {
	Load(ctx context.Context, key views.Key, draft bool) (*views.ViewConfig, error)
}

// Option configures the renderer.
type Option func(*Renderer)

// WithLogger sets the renderer logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		r.logger = logging.Ensure(logger)
	}
}

// Renderer turns placeholders into markup.
type Renderer struct {
	themes   ThemeSource
	views    ViewSource
	resolver *variants.Resolver
	cells    *plugins.CellRenderer
	logger   interfaces.Logger
}

// NewRenderer wires the renderer collaborators. A nil resolver renders the
// base layout only.
func NewRenderer(themeSource ThemeSource, viewSource ViewSource, resolver *variants.Resolver, cells *plugins.CellRenderer, opts ...Option) *Renderer {
	if resolver == nil {
		resolver = variants.NewResolver(nil, nil)
	}
	r := &Renderer{
		themes:   themeSource,
		views:    viewSource,
		resolver: resolver,
		cells:    cells,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Binding ties a placeholder to its view configuration and theme.
type Binding struct {
	Theme themes.Theme
	// Context is a copy of the caller's context bound to Theme.
	Context *renderctx.Context
	Config  *views.ViewConfig
}

// Global reports whether the placeholder is shared across views.
func (b *Binding) Global() bool {
	return b.Config != nil && b.Config.Key().View == GlobalView
}

// Placeholder is a resolved placeholder ready to render or edit.
type Placeholder struct {
	*Binding
	Name    string
	Layouts []variants.Resolved
	Default *layouts.Layout
}

// Resolve loads the theme, the view configuration and the applicable layouts
// of placeholder name. Draft data is used in edit mode.
func (r *Renderer) Resolve(ctx context.Context, rc *renderctx.Context, name string, defaultLayout *layouts.Layout) (*Placeholder, error) {
	binding, err := r.Bind(ctx, rc, name, rc.EditMode())
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	resolved, err := r.resolver.Resolve(ctx, binding.Config, name, defaultLayout, binding.Context)
	if err != nil {
		return nil, err
	}
	return &Placeholder{
		Binding: binding,
		Name:    name,
		Layouts: resolved,
		Default: defaultLayout,
	}, nil
}

// Bind loads the view configuration holding placeholder name for the tenant's
// active theme. Placeholders the theme declares global are stored under
// GlobalView.
func (r *Renderer) Bind(ctx context.Context, rc *renderctx.Context, name string, draft bool) (*Binding, error) {
	if rc == nil {
		return nil, ErrContextRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPlaceholderRequired
	}
	theme, err := r.currentTheme(ctx, rc.TenantID())
	if err != nil {
		return nil, err
	}

	bound := rc.Clone()
	bound.Theme = theme.ID

	view := bound.View
	if slices.Contains(theme.GlobalPlaceholders, name) {
		view = GlobalView
	}
	key := views.Key{Tenant: bound.TenantID(), Theme: theme.ID, View: view}.Normalize()

	binding := &Binding{Theme: theme, Context: bound}
	memo := requestCacheFrom(ctx)
	if vc, ok := memo.config(key, draft); ok {
		binding.Config = vc
		return binding, nil
	}
	vc, err := r.views.Load(ctx, key, draft)
	if err != nil {
		return nil, err
	}
	memo.storeConfig(key, draft, vc)
	binding.Config = vc
	return binding, nil
}

func (r *Renderer) currentTheme(ctx context.Context, tenant string) (themes.Theme, error) {
	memo := requestCacheFrom(ctx)
	if theme, ok := memo.theme(tenant); ok {
		return theme, nil
	}
	theme, err := r.themes.GetCurrentTheme(ctx, tenant)
	if err != nil {
		return themes.Theme{}, err
	}
	memo.storeTheme(tenant, theme)
	return theme, nil
}

// RenderPlaceholder renders every applicable layout of placeholder name. Outside
// edit mode only the base layout and stored variant layouts are emitted.
func (r *Renderer) RenderPlaceholder(ctx context.Context, rc *renderctx.Context, name string, defaultLayout *layouts.Layout) (string, error) {
	placeholder, err := r.Resolve(ctx, rc, name, defaultLayout)
	if err != nil {
		r.logger.WithContext(ctx).Error("rendering.placeholder.failed", "placeholder", name, "error", err)
		return "", err
	}
	edit := placeholder.Context.EditMode()

	var b strings.Builder
	for _, resolved := range placeholder.Layouts {
		if !edit && resolved.Flavor.Identifier() != variants.BaseIdentifier && !resolved.Stored() {
			continue
		}
		r.writeLayout(ctx, &b, placeholder, resolved, edit)
	}
	if edit && defaultLayout != nil {
		if err := writeDefaultLayout(&b, placeholder.Name, defaultLayout); err != nil {
			return "", err
		}
	}
	r.logger.WithContext(ctx).Debug("rendering.placeholder.rendered",
		"placeholder", placeholder.Name,
		"view", placeholder.Config.Key().View,
		"theme", placeholder.Theme.ID,
		"layouts", len(placeholder.Layouts),
		"edit", edit,
	)
	return b.String(), nil
}
