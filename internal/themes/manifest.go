package themes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-slug"
)

// ManifestFile is the file name looked up in each theme directory.
const ManifestFile = "theme.json"

// Manifest mirrors the expected theme.json structure.
type Manifest struct {
	Identifier         string         `json:"identifier"`
	Name               string         `json:"name"`
	TemplatePrefix     string         `json:"template_prefix,omitempty"`
	GlobalPlaceholders []string       `json:"global_placeholders,omitempty"`
	Plugins            []string       `json:"plugins,omitempty"`
	DefaultSettings    map[string]any `json:"default_settings,omitempty"`
}

// LoadManifest reads and parses a manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("themes: open manifest: %w", err)
	}
	defer file.Close()
	return ParseManifest(file)
}

// ParseManifest decodes manifest JSON from a reader.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var manifest Manifest
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("themes: parse manifest: %w", err)
	}
	return &manifest, nil
}

// Theme converts the manifest into a registrable Theme. When the manifest has
// no identifier one is derived from the name.
func (m *Manifest) Theme(dir string) (Theme, error) {
	if m == nil {
		return Theme{}, errors.New("themes: manifest required")
	}
	id := strings.TrimSpace(m.Identifier)
	if id == "" {
		if strings.TrimSpace(m.Name) == "" {
			return Theme{}, errors.New("themes: manifest missing identifier and name")
		}
		normalized, err := slug.Normalize(m.Name)
		if err != nil || normalized == "" {
			return Theme{}, fmt.Errorf("themes: derive identifier from %q: %w", m.Name, err)
		}
		id = normalized
	}
	theme := Theme{
		ID:                 id,
		Name:               m.Name,
		TemplatePrefix:     m.TemplatePrefix,
		GlobalPlaceholders: m.GlobalPlaceholders,
		Plugins:            m.Plugins,
		DefaultSettings:    m.DefaultSettings,
	}
	if dir != "" {
		theme.Path = filepath.Clean(dir)
	}
	return cloneTheme(theme), nil
}

// LoadDir registers every theme found in the immediate subdirectories of
// root. Directories without a manifest are skipped.
func LoadDir(registry *Registry, root string) ([]Theme, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("themes: read %s: %w", root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var loaded []Theme
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		manifest, err := LoadManifest(filepath.Join(dir, ManifestFile))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		theme, err := manifest.Theme(dir)
		if err != nil {
			return nil, fmt.Errorf("themes: %s: %w", dir, err)
		}
		if err := registry.Register(theme); err != nil {
			return nil, err
		}
		registered, _ := registry.Get(theme.ID)
		loaded = append(loaded, registered)
	}
	return loaded, nil
}
