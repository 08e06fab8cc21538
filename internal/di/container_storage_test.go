package di_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-xtheme/internal/di"
	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/editor"
	"github.com/goliatone/go-xtheme/internal/runtimeconfig"
	"github.com/goliatone/go-xtheme/internal/themes"
)

func sqliteConfig(name string) runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.Dialect = "sqlite"
	cfg.Storage.DSN = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	return cfg
}

func TestContainerBunStoragePersistsVersions(t *testing.T) {
	for _, cached := range []bool{false, true} {
		t.Run(fmt.Sprintf("repository_cache=%v", cached), func(t *testing.T) {
			cfg := sqliteConfig("xtheme_container")
			cfg.Storage.RepositoryCache = cached
			container := newContainer(t, cfg, di.WithThemes(themes.Theme{ID: "classic"}))
			ctx := context.Background()

			if container.BunDB() == nil {
				t.Fatal("expected bun database to be opened")
			}

			binding, err := container.Renderer().Bind(ctx, editorContext("index"), "front", true)
			if err != nil {
				t.Fatalf("bind: %v", err)
			}
			session, err := editor.NewSession(binding.Config, "front")
			if err != nil {
				t.Fatalf("session: %v", err)
			}
			for _, cmd := range []editor.Command{{Command: editor.AddRow}, {Command: editor.Publish}} {
				if _, err := container.Editor().Dispatch(ctx, session, cmd); err != nil {
					t.Fatalf("dispatch %s: %v", cmd.Command, err)
				}
			}

			versions, err := container.ViewService().ListVersions(ctx, binding.Config.Key())
			if err != nil {
				t.Fatalf("list versions: %v", err)
			}
			if len(versions) != 1 || versions[0].Status != domain.StatusPublic {
				t.Fatalf("expected one public version, got %#v", versions)
			}

			if _, err := container.ThemeService().SetCurrentTheme(ctx, "classic", "shop-2"); err != nil {
				t.Fatalf("activate: %v", err)
			}
			settings, err := container.ThemeService().ListSettings(ctx, "shop-2")
			if err != nil || len(settings) != 1 || !settings[0].Active {
				t.Fatalf("expected one active settings row, got %#v (%v)", settings, err)
			}
		})
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	cfg := sqliteConfig("xtheme_schema")
	db, err := di.OpenBunDB(cfg.Storage)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for range 2 {
		if err := di.EnsureSchema(context.Background(), db); err != nil {
			t.Fatalf("ensure schema: %v", err)
		}
	}
}
