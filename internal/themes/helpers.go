package themes

import (
	"maps"
	"slices"
)

func cloneTheme(theme Theme) Theme {
	theme.GlobalPlaceholders = slices.Clone(theme.GlobalPlaceholders)
	theme.Plugins = slices.Clone(theme.Plugins)
	theme.DefaultSettings = deepCloneMap(theme.DefaultSettings)
	return theme
}

func cloneSettings(record *ThemeSettings) *ThemeSettings {
	if record == nil {
		return nil
	}
	cloned := *record
	cloned.Settings = deepCloneMap(record.Settings)
	return &cloned
}

func deepCloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = deepCloneValue(value)
	}
	return out
}

func deepCloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return deepCloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = deepCloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(typed)
	default:
		return typed
	}
}

// mergeSettings overlays values on base without mutating either map.
func mergeSettings(base, values map[string]any) map[string]any {
	out := deepCloneMap(base)
	if out == nil {
		out = make(map[string]any, len(values))
	}
	maps.Copy(out, deepCloneMap(values))
	return out
}
