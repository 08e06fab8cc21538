package views

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-xtheme/internal/domain"
)

// Key identifies the configuration tuple of a page view.
type Key struct {
	Tenant string
	Theme  string
	View   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Tenant, k.Theme, k.View)
}

// Normalize trims every component.
func (k Key) Normalize() Key {
	return Key{
		Tenant: strings.TrimSpace(k.Tenant),
		Theme:  strings.ToLower(strings.TrimSpace(k.Theme)),
		View:   strings.TrimSpace(k.View),
	}
}

// SavedViewConfig is one stored version of a view's placeholder layouts.
// Data maps layout data keys to serialized layouts.
type SavedViewConfig struct {
	bun.BaseModel `bun:"table:xtheme_saved_view_configs,alias:svc"`

	ID          uuid.UUID                  `bun:",pk,type:uuid" json:"id"`
	TenantID    string                     `bun:"tenant_id,notnull" json:"tenant_id"`
	ThemeID     string                     `bun:"theme_id,notnull" json:"theme_id"`
	View        string                     `bun:"view,notnull" json:"view"`
	Status      domain.Status              `bun:"status,notnull" json:"status"`
	Data        map[string]json.RawMessage `bun:"data,type:jsonb" json:"data"`
	CreatedAt   time.Time                  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time                  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	PublishedAt *time.Time                 `bun:"published_at,nullzero" json:"published_at,omitempty"`
}

// Key returns the tuple the row belongs to.
func (c *SavedViewConfig) Key() Key {
	return Key{Tenant: c.TenantID, Theme: c.ThemeID, View: c.View}
}

func (c *SavedViewConfig) matches(key Key) bool {
	return c.TenantID == key.Tenant && c.ThemeID == key.Theme && c.View == key.View
}

func cloneRecord(record *SavedViewConfig) *SavedViewConfig {
	if record == nil {
		return nil
	}
	cloned := *record
	cloned.Data = cloneData(record.Data)
	if record.PublishedAt != nil {
		published := *record.PublishedAt
		cloned.PublishedAt = &published
	}
	return &cloned
}

func cloneData(data map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(data))
	for key, value := range data {
		out[key] = append(json.RawMessage(nil), value...)
	}
	return out
}
