package themes

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
)

var (
	ErrThemeIdentifierRequired = errors.New("themes: identifier required")
	ErrNoThemesRegistered      = errors.New("themes: no themes registered")
)

// Theme is an in-process description of a visual theme. Themes are
// registered at start-up and never persisted; per-tenant state lives in
// ThemeSettings.
type Theme struct {
	ID                 string         `json:"identifier"`
	Name               string         `json:"name"`
	TemplatePrefix     string         `json:"template_prefix"`
	GlobalPlaceholders []string       `json:"global_placeholders,omitempty"`
	Plugins            []string       `json:"plugins,omitempty"`
	DefaultSettings    map[string]any `json:"default_settings,omitempty"`
	// Path is the directory the theme was loaded from, if any.
	Path string `json:"-"`
}

// ShipsPlugin reports whether the theme lists id among its plugins.
func (t Theme) ShipsPlugin(id string) bool {
	return slices.Contains(t.Plugins, strings.ToLower(strings.TrimSpace(id)))
}

// Registry holds the themes known to the process.
type Registry struct {
	mu     sync.RWMutex
	themes map[string]Theme
}

// NewRegistry returns a registry seeded with themes.
func NewRegistry(themes ...Theme) (*Registry, error) {
	r := &Registry{themes: make(map[string]Theme)}
	for _, theme := range themes {
		if err := r.Register(theme); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds or replaces a theme. The template prefix defaults to the
// identifier.
func (r *Registry) Register(theme Theme) error {
	id := canonicalID(theme.ID)
	if id == "" {
		return ErrThemeIdentifierRequired
	}
	theme = cloneTheme(theme)
	theme.ID = id
	if strings.TrimSpace(theme.Name) == "" {
		theme.Name = id
	}
	theme.TemplatePrefix = strings.Trim(strings.TrimSpace(theme.TemplatePrefix), "/")
	if theme.TemplatePrefix == "" {
		theme.TemplatePrefix = id
	}
	for i, plugin := range theme.Plugins {
		theme.Plugins[i] = strings.ToLower(strings.TrimSpace(plugin))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.themes == nil {
		r.themes = make(map[string]Theme)
	}
	r.themes[id] = theme
	return nil
}

// Get returns the theme registered under id.
func (r *Registry) Get(id string) (Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	theme, ok := r.themes[canonicalID(id)]
	if !ok {
		return Theme{}, false
	}
	return cloneTheme(theme), true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// List returns the registered themes sorted by identifier.
func (r *Registry) List() []Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Theme, 0, len(r.themes))
	for _, theme := range r.themes {
		out = append(out, cloneTheme(theme))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func canonicalID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
