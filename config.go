package xtheme

import "github.com/goliatone/go-xtheme/internal/runtimeconfig"

var (
	ErrThemesRequired           = runtimeconfig.ErrThemesRequired
	ErrCacheProviderUnknown     = runtimeconfig.ErrCacheProviderUnknown
	ErrRedisAddrRequired        = runtimeconfig.ErrRedisAddrRequired
	ErrPluginCacheRequiresCache = runtimeconfig.ErrPluginCacheRequiresCache
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDialectUnknown    = runtimeconfig.ErrStorageDialectUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrEditorCellLimitInvalid   = runtimeconfig.ErrEditorCellLimitInvalid
	ErrVariantExpressionInvalid = runtimeconfig.ErrVariantExpressionInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config                 = runtimeconfig.Config
	ThemeConfig            = runtimeconfig.ThemeConfig
	CacheConfig            = runtimeconfig.CacheConfig
	RedisConfig            = runtimeconfig.RedisConfig
	StorageConfig          = runtimeconfig.StorageConfig
	EditorConfig           = runtimeconfig.EditorConfig
	VariantsConfig         = runtimeconfig.VariantsConfig
	ExpressionFlavorConfig = runtimeconfig.ExpressionFlavorConfig
	HTTPConfig             = runtimeconfig.HTTPConfig
	Features               = runtimeconfig.Features
	LoggingConfig          = runtimeconfig.LoggingConfig
)

// DefaultConfig returns an in-memory configuration with the built-in flavors.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
