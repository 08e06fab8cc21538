package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from key using go-hashid. Keys must be
// prefixed per record type so different records never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ThemeSettingsUUID identifies the settings row of a theme for a tenant.
func ThemeSettingsUUID(tenant, theme string) uuid.UUID {
	return UUID("xtheme:theme_settings:" + normalize(tenant) + ":" + normalize(theme))
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
