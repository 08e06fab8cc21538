package xtheme

import (
	"context"
	"net/http"

	"github.com/goliatone/go-xtheme/internal/di"
	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/editor"
	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/plugins"
	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/internal/rendering"
	"github.com/goliatone/go-xtheme/internal/themes"
	"github.com/goliatone/go-xtheme/internal/variants"
	"github.com/goliatone/go-xtheme/internal/views"
)

// RenderContext carries the tenant, visitor, entities and edit mode of a request.
type RenderContext = renderctx.Context

// Layout is the placeholder grid.
type Layout = layouts.Layout

// Theme is a registered theme.
type Theme = themes.Theme

// ThemeService exports the theme service contract.
type ThemeService = themes.Service

// ViewService exports the view configuration service contract.
type ViewService = views.Service

// ViewConfig is a loaded view configuration bound to its store.
type ViewConfig = views.ViewConfig

// Flavor is a layout variant selectable by context.
type Flavor = variants.Flavor

// PluginRegistry maps plugin identifiers to factories.
type PluginRegistry = plugins.Registry

// EditorCommand is one editor instruction.
type EditorCommand = editor.Command

// EditorOutcome reports the effect of an editor command.
type EditorOutcome = editor.Outcome

// EditorSession holds the placeholder layout under edit.
type EditorSession = editor.Session

// EditorSessionOption configures a session opened with OpenEditor.
type EditorSessionOption = editor.SessionOption

// SelectCell selects the cell at (x, y) for change_plugin and save_config.
func SelectCell(x, y int) EditorSessionOption {
	return editor.WithSelection(x, y)
}

// Status is the version state of a stored view configuration.
type Status = domain.Status

const (
	StatusDraft      = domain.StatusDraft
	StatusOldVersion = domain.StatusOldVersion
	StatusPublic     = domain.StatusPublic
)

// Option overrides a container binding.
type Option = di.Option

var (
	WithLoggerProvider  = di.WithLoggerProvider
	WithKeyValueCache   = di.WithKeyValueCache
	WithTemplate        = di.WithTemplate
	WithBunDB           = di.WithBunDB
	WithRepositoryCache = di.WithRepositoryCache
	WithThemes          = di.WithThemes
	WithFlavors         = di.WithFlavors
	WithContextResolver = di.WithContextResolver
)

// Error helpers.
var (
	IsConfigurationError = domain.IsConfigurationError
	IsVersionStateError  = domain.IsVersionStateError
	IsValidationError    = domain.IsValidationError
)

// Module represents the top level layout engine façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases database and cache connections.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Themes returns the configured theme service.
func (m *Module) Themes() ThemeService {
	return m.container.ThemeService()
}

// Views returns the configured view configuration service.
func (m *Module) Views() ViewService {
	return m.container.ViewService()
}

// Plugins returns the plugin registry so hosts can register their own plugins.
func (m *Module) Plugins() *PluginRegistry {
	return m.container.PluginRegistry()
}

// Flavors returns the layout flavor registry.
func (m *Module) Flavors() *variants.Registry {
	return m.container.FlavorRegistry()
}

// WithRequestCache returns a context that memoizes the current theme and view
// configurations for the lifetime of one request.
func WithRequestCache(ctx context.Context) context.Context {
	return rendering.WithRequestCache(ctx)
}

// RenderPlaceholder renders the placeholder name for rc. defaultLayout is used
// for layouts with nothing stored and may be nil.
func (m *Module) RenderPlaceholder(ctx context.Context, rc *RenderContext, name string, defaultLayout *Layout) (string, error) {
	return m.container.Renderer().RenderPlaceholder(ctx, rc, name, defaultLayout)
}

// OpenEditor starts an editor session on the draft of placeholder name. An
// empty layoutKey edits the base layout. No cell is selected unless opts
// include SelectCell.
func (m *Module) OpenEditor(ctx context.Context, rc *RenderContext, name, layoutKey string, defaultLayout *Layout, opts ...EditorSessionOption) (*EditorSession, error) {
	binding, err := m.container.Renderer().Bind(ctx, rc, name, true)
	if err != nil {
		return nil, err
	}
	sessionOpts := append([]editor.SessionOption{
		editor.WithLayoutKey(layoutKey),
		editor.WithDefaultLayout(defaultLayout),
	}, opts...)
	return editor.NewSession(binding.Config, name, sessionOpts...)
}

// Dispatch applies an editor command to session. It returns ErrEditorDisabled
// when the editor feature is off.
func (m *Module) Dispatch(ctx context.Context, session *EditorSession, cmd EditorCommand) (EditorOutcome, error) {
	ed := m.container.Editor()
	if ed == nil {
		return EditorOutcome{Command: cmd.Command}, ErrEditorDisabled
	}
	return ed.Dispatch(ctx, session, cmd)
}

// Handler returns the HTTP handler serving preview and editor endpoints.
func (m *Module) Handler() http.Handler {
	return m.container.API().Routes()
}
