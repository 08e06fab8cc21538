package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-xtheme/internal/runtimeconfig"
)

func TestConfigValidate_AcceptsDefaults(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresThemes(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Themes.ManifestDirs = nil

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrThemesRequired) {
		t.Fatalf("expected ErrThemesRequired, got %v", err)
	}
}

func TestConfigValidate_RedisNeedsAddress(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Provider = "redis"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrRedisAddrRequired) {
		t.Fatalf("expected ErrRedisAddrRequired, got %v", err)
	}

	cfg.Cache.Redis.Addr = "localhost:6379"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RejectsUnknownCacheProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Provider = "memcached"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheProviderUnknown) {
		t.Fatalf("expected ErrCacheProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_PluginCacheRequiresCache(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = false

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrPluginCacheRequiresCache) {
		t.Fatalf("expected ErrPluginCacheRequiresCache, got %v", err)
	}
}

func TestConfigValidate_BunStorage(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}

	cfg.Storage.DSN = "file::memory:?cache=shared"
	cfg.Storage.Dialect = "mysql"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDialectUnknown) {
		t.Fatalf("expected ErrStorageDialectUnknown, got %v", err)
	}

	cfg.Storage.Dialect = "postgres"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_FixesCellLimit(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Editor.MaxCellsPerRow = 6

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrEditorCellLimitInvalid) {
		t.Fatalf("expected ErrEditorCellLimitInvalid, got %v", err)
	}
}

func TestConfigValidate_Variants(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Variants.Expressions = []runtimeconfig.ExpressionFlavorConfig{{ID: "vip"}}

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrVariantExpressionInvalid) {
		t.Fatalf("expected ErrVariantExpressionInvalid, got %v", err)
	}

	cfg.Variants.Expressions[0].Expression = `in_group("vip")`
	cfg.Features.Variants = false
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrVariantsFeatureRequired) {
		t.Fatalf("expected ErrVariantsFeatureRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
