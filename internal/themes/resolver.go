package themes

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// AdminPrefix marks templates that are never themed.
const AdminPrefix = "admin/"

var (
	ErrTemplateNotFound        = errors.New("themes: template not found")
	ErrTemplateRendererMissing = errors.New("themes: template renderer required")
)

// Candidates lists the template names tried for name under theme, most
// specific first: the theme-prefixed path, then the bare name.
func Candidates(theme Theme, name string) []string {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return nil
	}
	if strings.HasPrefix(name, AdminPrefix) || theme.TemplatePrefix == "" {
		return []string{name}
	}
	return []string{theme.TemplatePrefix + "/" + name, name}
}

// Resolver picks the first candidate known to the template renderer.
type Resolver struct {
	templates interfaces.TemplateRenderer
}

// NewResolver binds a resolver to the template renderer.
func NewResolver(templates interfaces.TemplateRenderer) *Resolver {
	return &Resolver{templates: templates}
}

// Resolve returns the first existing candidate for name.
func (r *Resolver) Resolve(theme Theme, name string) (string, bool) {
	if r == nil || r.templates == nil {
		return "", false
	}
	for _, candidate := range Candidates(theme, name) {
		if r.templates.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// TemplateEngine renders theme-resolved templates for plugins.
type TemplateEngine struct {
	registry  *Registry
	resolver  *Resolver
	templates interfaces.TemplateRenderer
}

// NewTemplateEngine returns a TemplateEngine that resolves the theme from the
// render context against registry.
func NewTemplateEngine(registry *Registry, templates interfaces.TemplateRenderer) *TemplateEngine {
	return &TemplateEngine{
		registry:  registry,
		resolver:  NewResolver(templates),
		templates: templates,
	}
}

// RenderTemplate resolves name for the context theme and renders it with data.
// The theme is exposed to the template under "theme".
func (e *TemplateEngine) RenderTemplate(_ context.Context, rc *renderctx.Context, name string, data map[string]any) (string, error) {
	if e == nil || e.templates == nil {
		return "", ErrTemplateRendererMissing
	}
	var theme Theme
	if rc != nil && e.registry != nil {
		theme, _ = e.registry.Get(rc.Theme)
	}
	resolved, ok := e.resolver.Resolve(theme, name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	payload := maps.Clone(data)
	if payload == nil {
		payload = map[string]any{}
	}
	payload["theme"] = theme
	return e.templates.Render(resolved, payload)
}
