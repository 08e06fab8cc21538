package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxCellsPerRow is the only accepted editor cell limit.
const MaxCellsPerRow = 4

var (
	ErrThemesRequired           = errors.New("xtheme config: at least one theme manifest directory or default theme is required")
	ErrCacheProviderUnknown     = errors.New("xtheme config: cache provider is invalid")
	ErrCacheTTLInvalid          = errors.New("xtheme config: cache default ttl must be zero or positive")
	ErrRedisAddrRequired        = errors.New("xtheme config: redis address is required for the redis cache provider")
	ErrPluginCacheRequiresCache = errors.New("xtheme config: plugin cache feature requires cache to be enabled")
	ErrStorageProviderUnknown   = errors.New("xtheme config: storage provider is invalid")
	ErrStorageDialectUnknown    = errors.New("xtheme config: storage dialect is invalid")
	ErrStorageDSNRequired       = errors.New("xtheme config: storage dsn is required for the bun provider")
	ErrEditorCellLimitInvalid   = errors.New("xtheme config: editor max cells per row must be 4")
	ErrEditorTimeoutInvalid     = errors.New("xtheme config: editor command timeout must be zero or positive")
	ErrVariantExpressionInvalid = errors.New("xtheme config: expression flavors need an id and an expression")
	ErrVariantsFeatureRequired  = errors.New("xtheme config: variants feature must be enabled to configure flavors")
	ErrLoggingProviderRequired  = errors.New("xtheme config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown   = errors.New("xtheme config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("xtheme config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("xtheme config: logging format is invalid")
)

// Config aggregates feature flags and adapter bindings for the layout engine.
type Config struct {
	Themes   ThemeConfig    `toml:"themes"`
	Cache    CacheConfig    `toml:"cache"`
	Storage  StorageConfig  `toml:"storage"`
	Editor   EditorConfig   `toml:"editor"`
	Variants VariantsConfig `toml:"variants"`
	HTTP     HTTPConfig     `toml:"http"`
	Logging  LoggingConfig  `toml:"logging"`
	Features Features       `toml:"features"`
}

// ThemeConfig lists where theme manifests live and which theme a tenant
// without settings gets.
type ThemeConfig struct {
	Default      string   `toml:"default"`
	ManifestDirs []string `toml:"manifest_dirs"`
}

// CacheConfig selects the shared key/value cache.
type CacheConfig struct {
	Enabled    bool          `toml:"enabled"`
	Provider   string        `toml:"provider"`
	DefaultTTL time.Duration `toml:"default_ttl"`
	Redis      RedisConfig   `toml:"redis"`
}

// RedisConfig configures the redis cache provider.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// StorageConfig selects the repositories backing settings and view configs.
type StorageConfig struct {
	Provider string `toml:"provider"`
	Dialect  string `toml:"dialect"`
	DSN      string `toml:"dsn"`
	// RepositoryCache enables read-through caching of repository lookups.
	RepositoryCache bool `toml:"repository_cache"`
}

// EditorConfig captures editor behaviour.
type EditorConfig struct {
	MaxCellsPerRow int           `toml:"max_cells_per_row"`
	CommandTimeout time.Duration `toml:"command_timeout"`
}

// VariantsConfig declares layout flavors on top of the built-ins.
type VariantsConfig struct {
	Builtins    bool                     `toml:"builtins"`
	Groups      []string                 `toml:"groups"`
	Expressions []ExpressionFlavorConfig `toml:"expressions"`
}

// ExpressionFlavorConfig declares an expression-based flavor.
type ExpressionFlavorConfig struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	HelpText   string `toml:"help_text"`
	Expression string `toml:"expression"`
}

// HTTPConfig configures the optional HTTP adapter.
type HTTPConfig struct {
	Addr          string `toml:"addr"`
	BasePath      string `toml:"base_path"`
	DefaultTenant string `toml:"default_tenant"`
}

// Features toggles module functionality.
type Features struct {
	Editor      bool `toml:"editor"`
	Variants    bool `toml:"variants"`
	PluginCache bool `toml:"plugin_cache"`
	Logger      bool `toml:"logger"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `toml:"provider"`
	Level     string   `toml:"level"`
	Format    string   `toml:"format"`
	AddSource bool     `toml:"add_source"`
	Focus     []string `toml:"focus"`
}

// DefaultConfig returns an in-memory setup with the built-in flavors.
func DefaultConfig() Config {
	return Config{
		Themes: ThemeConfig{
			ManifestDirs: []string{"themes"},
		},
		Cache: CacheConfig{
			Enabled:    true,
			Provider:   "memory",
			DefaultTTL: time.Minute,
			Redis: RedisConfig{
				Prefix: "xtheme",
			},
		},
		Storage: StorageConfig{
			Provider: "memory",
			Dialect:  "sqlite",
		},
		Editor: EditorConfig{
			MaxCellsPerRow: MaxCellsPerRow,
			CommandTimeout: 30 * time.Second,
		},
		Variants: VariantsConfig{
			Builtins: true,
		},
		HTTP: HTTPConfig{
			Addr:          ":8080",
			BasePath:      "/xtheme",
			DefaultTenant: "default",
		},
		Features: Features{
			Editor:      true,
			Variants:    true,
			PluginCache: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if len(cfg.Themes.ManifestDirs) == 0 && strings.TrimSpace(cfg.Themes.Default) == "" {
		return ErrThemesRequired
	}

	if cfg.Cache.Enabled {
		provider := normalize(cfg.Cache.Provider)
		switch provider {
		case "memory", "none", "":
		case "redis":
			if strings.TrimSpace(cfg.Cache.Redis.Addr) == "" {
				return ErrRedisAddrRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrCacheProviderUnknown, provider)
		}
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Features.PluginCache && !cfg.Cache.Enabled {
		return ErrPluginCacheRequiresCache
	}

	switch provider := normalize(cfg.Storage.Provider); provider {
	case "memory", "":
	case "bun":
		switch dialect := normalize(cfg.Storage.Dialect); dialect {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, dialect)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	if cfg.Editor.MaxCellsPerRow != 0 && cfg.Editor.MaxCellsPerRow != MaxCellsPerRow {
		return fmt.Errorf("%w: got %d", ErrEditorCellLimitInvalid, cfg.Editor.MaxCellsPerRow)
	}
	if cfg.Editor.CommandTimeout < 0 {
		return ErrEditorTimeoutInvalid
	}

	if !cfg.Features.Variants && (len(cfg.Variants.Groups) > 0 || len(cfg.Variants.Expressions) > 0) {
		return ErrVariantsFeatureRequired
	}
	for idx, flavor := range cfg.Variants.Expressions {
		if strings.TrimSpace(flavor.ID) == "" || strings.TrimSpace(flavor.Expression) == "" {
			return fmt.Errorf("%w: entry %d", ErrVariantExpressionInvalid, idx)
		}
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
