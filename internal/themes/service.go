package themes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-xtheme/internal/cache"
	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/identity"
	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/internal/validation"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// ErrThemeNotRegistered is the source of ConfigurationErrors for unknown themes.
var ErrThemeNotRegistered = domain.ErrUnknownTheme

var (
	ErrRegistryRequired           = errors.New("themes: registry required")
	ErrSettingsRepositoryRequired = errors.New("themes: settings repository required")
)

// Service resolves the active theme of a tenant and manages theme settings.
type Service interface {
	Registry() *Registry
	GetCurrentTheme(ctx context.Context, tenant string) (Theme, error)
	SetCurrentTheme(ctx context.Context, themeID, tenant string) (Theme, error)
	ListSettings(ctx context.Context, tenant string) ([]*ThemeSettings, error)
	GetSettings(ctx context.Context, tenant, themeID string) (*ThemeSettings, error)
	UpdateSettings(ctx context.Context, tenant, themeID string, values map[string]any) (*ThemeSettings, error)
	ImportSettings(ctx context.Context, tenant, themeID string, payload []byte) (*ThemeSettings, error)
	ExportSettings(ctx context.Context, tenant, themeID string) ([]byte, error)
}

// SettingsDocument is the import/export shape of theme settings.
type SettingsDocument struct {
	Settings map[string]any `json:"settings"`
}

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCache caches the resolved active theme per tenant.
func WithCache(kv interfaces.KeyValueCache, ttl time.Duration) ServiceOption {
	return func(s *service) {
		s.cache = kv
		s.cacheTTL = ttl
	}
}

// WithDefaultTheme selects the theme auto-activated for tenants without an
// active theme. It falls back to the first registered theme.
func WithDefaultTheme(id string) ServiceOption {
	return func(s *service) {
		s.defaultTheme = canonicalID(id)
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	registry     *Registry
	settings     SettingsRepository
	cache        interfaces.KeyValueCache
	cacheTTL     time.Duration
	defaultTheme string
	now          func() time.Time
	logger       interfaces.Logger
}

// NewService constructs a theme service instance.
func NewService(registry *Registry, settings SettingsRepository, opts ...ServiceOption) Service {
	if registry == nil {
		panic(ErrRegistryRequired)
	}
	if settings == nil {
		panic(ErrSettingsRepositoryRequired)
	}
	s := &service{
		registry: registry,
		settings: settings,
		now:      time.Now,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Registry() *Registry {
	return s.registry
}

func (s *service) GetCurrentTheme(ctx context.Context, tenant string) (Theme, error) {
	key := s.currentThemeKey(ctx, tenant)
	if key != "" {
		if cached, hit, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("themes.cache.get_failed", "tenant", tenant, "error", err)
		} else if hit {
			if theme, ok := s.registry.Get(string(cached)); ok {
				return theme, nil
			}
		}
	}

	theme, err := s.resolveActive(ctx, tenant)
	if err != nil {
		return Theme{}, err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, []byte(theme.ID), s.cacheTTL); err != nil {
			s.logger.Warn("themes.cache.set_failed", "tenant", tenant, "error", err)
		}
	}
	return theme, nil
}

func (s *service) resolveActive(ctx context.Context, tenant string) (Theme, error) {
	active, err := s.settings.GetActive(ctx, tenant)
	switch {
	case err == nil:
		if theme, ok := s.registry.Get(active.ThemeID); ok {
			return theme, nil
		}
		s.logger.Warn("themes.active_unregistered", "tenant", tenant, "theme", active.ThemeID)
	case !isNotFound(err):
		return Theme{}, err
	}

	fallback, ok := s.fallbackTheme()
	if !ok {
		return Theme{}, domain.NewConfigurationError(ErrNoThemesRegistered, "no themes are registered")
	}
	s.logger.Info("themes.auto_activate", "tenant", tenant, "theme", fallback.ID)
	return s.SetCurrentTheme(ctx, fallback.ID, tenant)
}

func (s *service) fallbackTheme() (Theme, bool) {
	if s.defaultTheme != "" {
		if theme, ok := s.registry.Get(s.defaultTheme); ok {
			return theme, true
		}
	}
	all := s.registry.List()
	if len(all) == 0 {
		return Theme{}, false
	}
	return all[0], true
}

func (s *service) SetCurrentTheme(ctx context.Context, themeID, tenant string) (Theme, error) {
	theme, ok := s.registry.Get(themeID)
	if !ok {
		return Theme{}, domain.NewConfigurationError(ErrThemeNotRegistered, fmt.Sprintf("theme %q is not registered", strings.TrimSpace(themeID)))
	}

	record, err := s.loadOrNewSettings(ctx, tenant, theme)
	if err != nil {
		return Theme{}, err
	}
	record.UpdatedAt = s.now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = record.UpdatedAt
	}

	if _, err := s.settings.Activate(ctx, record); err != nil {
		return Theme{}, err
	}
	s.invalidate(ctx, tenant)
	s.logger.Info("themes.activated", "tenant", tenant, "theme", theme.ID)
	return theme, nil
}

func (s *service) ListSettings(ctx context.Context, tenant string) ([]*ThemeSettings, error) {
	records, err := s.settings.ListByTenant(ctx, tenant)
	if err != nil {
		return nil, err
	}
	out := make([]*ThemeSettings, 0, len(records))
	for _, record := range records {
		out = append(out, cloneSettings(record))
	}
	return out, nil
}

// GetSettings returns the stored settings or an unsaved row seeded with the
// theme defaults.
func (s *service) GetSettings(ctx context.Context, tenant, themeID string) (*ThemeSettings, error) {
	theme, ok := s.registry.Get(themeID)
	if !ok {
		return nil, domain.NewConfigurationError(ErrThemeNotRegistered, fmt.Sprintf("theme %q is not registered", strings.TrimSpace(themeID)))
	}
	return s.loadOrNewSettings(ctx, tenant, theme)
}

func (s *service) UpdateSettings(ctx context.Context, tenant, themeID string, values map[string]any) (*ThemeSettings, error) {
	record, err := s.GetSettings(ctx, tenant, themeID)
	if err != nil {
		return nil, err
	}
	record.Settings = mergeSettings(record.Settings, values)
	record.UpdatedAt = s.now().UTC()

	var saved *ThemeSettings
	if record.CreatedAt.IsZero() {
		record.CreatedAt = record.UpdatedAt
		saved, err = s.settings.Create(ctx, record)
	} else {
		saved, err = s.settings.Update(ctx, record)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant)
	return cloneSettings(saved), nil
}

func (s *service) ImportSettings(ctx context.Context, tenant, themeID string, payload []byte) (*ThemeSettings, error) {
	if err := validation.ValidateThemeSettingsDocument(payload); err != nil {
		return nil, domain.NewValidationError(err, "invalid theme settings document")
	}
	var doc SettingsDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, domain.NewValidationError(err, "invalid theme settings document")
	}
	return s.UpdateSettings(ctx, tenant, themeID, doc.Settings)
}

func (s *service) ExportSettings(ctx context.Context, tenant, themeID string) ([]byte, error) {
	record, err := s.GetSettings(ctx, tenant, themeID)
	if err != nil {
		return nil, err
	}
	settings := record.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return json.Marshal(SettingsDocument{Settings: settings})
}

func (s *service) loadOrNewSettings(ctx context.Context, tenant string, theme Theme) (*ThemeSettings, error) {
	record, err := s.settings.Get(ctx, tenant, theme.ID)
	if err == nil {
		return cloneSettings(record), nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return &ThemeSettings{
		ID:       identity.ThemeSettingsUUID(tenant, theme.ID),
		TenantID: tenant,
		ThemeID:  theme.ID,
		Settings: deepCloneMap(theme.DefaultSettings),
	}, nil
}

func (s *service) currentThemeKey(ctx context.Context, tenant string) string {
	if s.cache == nil {
		return ""
	}
	version, err := s.cache.Version(ctx, cache.TenantScope(tenant))
	if err != nil {
		s.logger.Warn("themes.cache.version_failed", "tenant", tenant, "error", err)
		return ""
	}
	return fmt.Sprintf("theme:current:%s:v%d", tenant, version)
}

func (s *service) invalidate(ctx context.Context, tenant string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.BumpVersion(ctx, cache.TenantScope(tenant)); err != nil {
		s.logger.Warn("themes.cache.bump_failed", "tenant", tenant, "error", err)
	}
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
