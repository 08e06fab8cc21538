package themes

import (
	"context"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ThemeSettings stores the per-tenant state of a theme. At most one row per
// tenant is active.
type ThemeSettings struct {
	bun.BaseModel `bun:"table:xtheme_theme_settings,alias:ts"`

	ID        uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	TenantID  string         `bun:"tenant_id,notnull,unique:tenant_theme" json:"tenant_id"`
	ThemeID   string         `bun:"theme_id,notnull,unique:tenant_theme" json:"theme_id"`
	Active    bool           `bun:"active,notnull,default:false" json:"active"`
	Settings  map[string]any `bun:"settings,type:jsonb" json:"settings"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// SettingsRepository exposes persistence operations for theme settings.
type SettingsRepository interface {
	Get(ctx context.Context, tenant, theme string) (*ThemeSettings, error)
	GetActive(ctx context.Context, tenant string) (*ThemeSettings, error)
	ListByTenant(ctx context.Context, tenant string) ([]*ThemeSettings, error)
	Create(ctx context.Context, record *ThemeSettings) (*ThemeSettings, error)
	Update(ctx context.Context, record *ThemeSettings) (*ThemeSettings, error)
	// Activate marks record active and every other row of the tenant
	// inactive in one transition, inserting record when it does not exist.
	Activate(ctx context.Context, record *ThemeSettings) (*ThemeSettings, error)
}

// NotFoundError is returned when a settings row cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewSettingsRepository creates the generic bun repository for settings rows.
func NewSettingsRepository(db *bun.DB) repository.Repository[*ThemeSettings] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ThemeSettings]{
		NewRecord:          func() *ThemeSettings { return &ThemeSettings{} },
		GetID:              func(record *ThemeSettings) uuid.UUID { return record.ID },
		SetID:              func(record *ThemeSettings, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(record *ThemeSettings) string { return record.ID.String() },
	})
}

func settingsKey(tenant, theme string) string {
	return tenant + "/" + theme
}
