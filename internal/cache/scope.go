// Package cache provides the KeyValueCache backends used by the layout engine
// together with the scope names writers bump to invalidate rendered output.
package cache

import "strings"

// TenantScope covers everything rendered for a tenant, including the
// resolved active theme.
func TenantScope(tenant string) string {
	return "tenant:" + normalize(tenant)
}

// ThemeScope covers placeholder output rendered for a tenant under a theme.
func ThemeScope(tenant, theme string) string {
	return TenantScope(tenant) + ":theme:" + normalize(theme)
}

func normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "_"
	}
	return value
}
