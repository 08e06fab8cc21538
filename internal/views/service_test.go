package views_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-xtheme/internal/cache"
	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/views"
	"github.com/goliatone/go-xtheme/pkg/testsupport"
)

var testKey = views.Key{Tenant: "shop-1", Theme: "classic", View: "index"}

type repoFactory func(t *testing.T) views.Repository

func memoryRepo(*testing.T) views.Repository {
	return views.NewMemoryRepository()
}

func bunRepo(t *testing.T) views.Repository {
	t.Helper()
	db, err := testsupport.NewSQLiteBunDB(context.Background(), (*views.SavedViewConfig)(nil))
	if err != nil {
		t.Fatalf("sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return views.NewBunRepository(db)
}

func forEachRepository(t *testing.T, fn func(t *testing.T, repo views.Repository)) {
	for name, factory := range map[string]repoFactory{"memory": memoryRepo, "bun": bunRepo} {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

// steppingClock returns strictly increasing timestamps.
func steppingClock() func() time.Time {
	current := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func textLayout(text string) *layouts.Layout {
	layout := layouts.New("ph")
	layout.AddPlugin("text", map[string]any{"text": text})
	return layout
}

func storedText(t *testing.T, vc *views.ViewConfig, key string) string {
	t.Helper()
	layout, ok, err := vc.PlaceholderLayout(key)
	if err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	if !ok {
		return ""
	}
	cell := layout.GetCell(0, 0)
	if cell == nil {
		return ""
	}
	text, _ := cell.Config["text"].(string)
	return text
}

func TestDraftLifecycle(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo views.Repository) {
		ctx := context.Background()
		svc := views.NewService(repo, views.WithNow(steppingClock()))

		draft, err := svc.Load(ctx, testKey, true)
		if err != nil {
			t.Fatalf("load draft: %v", err)
		}
		if !draft.IsDraft() || draft.Persisted() {
			t.Fatalf("expected fresh unsaved draft, got status %s persisted=%v", draft.Status(), draft.Persisted())
		}
		if err := draft.SavePlaceholderLayout(ctx, "ph", textLayout("v1")); err != nil {
			t.Fatalf("save: %v", err)
		}
		if !draft.Persisted() {
			t.Fatal("expected save to persist the draft")
		}

		public, err := svc.Load(ctx, testKey, false)
		if err != nil {
			t.Fatalf("load public: %v", err)
		}
		if public.IsDraft() || storedText(t, public, "ph") != "" {
			t.Fatal("expected no public data before publishing")
		}

		if err := draft.Publish(ctx); err != nil {
			t.Fatalf("publish: %v", err)
		}
		if draft.Status() != domain.StatusPublic {
			t.Fatalf("expected published status, got %s", draft.Status())
		}

		public, _ = svc.Load(ctx, testKey, false)
		if got := storedText(t, public, "ph"); got != "v1" {
			t.Fatalf("expected published layout, got %q", got)
		}
	})
}

func TestNonDraftOperationsFail(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo views.Repository) {
		ctx := context.Background()
		svc := views.NewService(repo, views.WithNow(steppingClock()))

		public, err := svc.Load(ctx, testKey, false)
		if err != nil {
			t.Fatalf("load public: %v", err)
		}
		if err := public.SavePlaceholderLayout(ctx, "ph", textLayout("x")); !domain.IsVersionStateError(err) {
			t.Fatalf("expected version state error on save, got %v", err)
		}
		if err := public.Publish(ctx); !domain.IsVersionStateError(err) {
			t.Fatalf("expected version state error on publish, got %v", err)
		}
		if err := public.Revert(ctx); !domain.IsVersionStateError(err) {
			t.Fatalf("expected version state error on revert, got %v", err)
		}

		versions, err := svc.ListVersions(ctx, testKey)
		if err != nil {
			t.Fatalf("list versions: %v", err)
		}
		if len(versions) != 0 {
			t.Fatalf("expected failed operations to leave storage untouched, got %d rows", len(versions))
		}
	})
}

func TestDraftFallbackIsolation(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo views.Repository) {
		ctx := context.Background()
		svc := views.NewService(repo, views.WithNow(steppingClock()))
		publishText(ctx, t, svc, "published")

		draft, err := svc.Load(ctx, testKey, true)
		if err != nil {
			t.Fatalf("load draft: %v", err)
		}
		if draft.Persisted() {
			t.Fatal("expected an unsaved copy of the public configuration")
		}
		public, _ := svc.Load(ctx, testKey, false)
		if draft.ID() == public.ID() {
			t.Fatal("expected the copy to get its own identity")
		}
		if got := storedText(t, draft, "ph"); got != "published" {
			t.Fatalf("expected draft to start from public data, got %q", got)
		}

		if err := draft.SavePlaceholderLayout(ctx, "ph", textLayout("edited")); err != nil {
			t.Fatalf("save: %v", err)
		}
		public, _ = svc.Load(ctx, testKey, false)
		if got := storedText(t, public, "ph"); got != "published" {
			t.Fatalf("expected public data to stay untouched, got %q", got)
		}
	})
}

func TestRevertDiscardsDraft(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo views.Repository) {
		ctx := context.Background()
		svc := views.NewService(repo, views.WithNow(steppingClock()))
		publishText(ctx, t, svc, "published")

		draft, _ := svc.Load(ctx, testKey, true)
		if err := draft.SavePlaceholderLayout(ctx, "ph", textLayout("edited")); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := draft.Revert(ctx); err != nil {
			t.Fatalf("revert: %v", err)
		}
		if draft.Persisted() || storedText(t, draft, "ph") != "published" {
			t.Fatal("expected revert to reset the draft to the public data")
		}

		reloaded, _ := svc.Load(ctx, testKey, true)
		if reloaded.Persisted() {
			t.Fatal("expected no stored draft after revert")
		}

		fresh, _ := svc.Load(ctx, views.Key{Tenant: "shop-1", Theme: "classic", View: "cart"}, true)
		if err := fresh.Revert(ctx); err != nil {
			t.Fatalf("expected revert of an unsaved draft to be a no-op, got %v", err)
		}
	})
}

func TestPublishStoresUnsavedDraft(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo views.Repository) {
		ctx := context.Background()
		svc := views.NewService(repo, views.WithNow(steppingClock()))

		fresh, err := svc.Load(ctx, testKey, true)
		if err != nil {
			t.Fatalf("load draft: %v", err)
		}
		if err := fresh.Publish(ctx); err != nil {
			t.Fatalf("publish fresh draft: %v", err)
		}
		if fresh.Status() != domain.StatusPublic || !fresh.Persisted() {
			t.Fatalf("expected the fresh draft to become public, got %s persisted=%v", fresh.Status(), fresh.Persisted())
		}
		firstID := fresh.ID()

		copied, _ := svc.Load(ctx, testKey, true)
		if copied.Persisted() {
			t.Fatal("expected an unsaved copy of the public row")
		}
		if err := copied.Publish(ctx); err != nil {
			t.Fatalf("publish copy: %v", err)
		}

		versions, err := svc.ListVersions(ctx, testKey)
		if err != nil {
			t.Fatalf("list versions: %v", err)
		}
		if len(versions) != 2 {
			t.Fatalf("expected two stored rows, got %d", len(versions))
		}
		if versions[0].ID != copied.ID() || versions[0].Status != domain.StatusPublic {
			t.Fatalf("expected the copy to be public, got %#v", versions[0])
		}
		if versions[1].ID != firstID || versions[1].Status != domain.StatusOldVersion {
			t.Fatalf("expected the first public row to be demoted, got %#v", versions[1])
		}
	})
}

func TestAtMostOnePublicUnderRandomOperations(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo views.Repository) {
		ctx := context.Background()
		svc := views.NewService(repo, views.WithNow(steppingClock()))
		rng := rand.New(rand.NewSource(7))

		for step := range 60 {
			vc, err := svc.Load(ctx, testKey, rng.Intn(4) != 0)
			if err != nil {
				t.Fatalf("step %d load: %v", step, err)
			}
			switch rng.Intn(3) {
			case 0:
				err = vc.SavePlaceholderLayout(ctx, "ph", textLayout("step"))
			case 1:
				err = vc.Publish(ctx)
			case 2:
				err = vc.Revert(ctx)
			}
			if err != nil && !domain.IsVersionStateError(err) {
				t.Fatalf("step %d: unexpected error %v", step, err)
			}
			if err != nil && vc.IsDraft() {
				t.Fatalf("step %d: draft rejected an operation: %v", step, err)
			}

			versions, err := svc.ListVersions(ctx, testKey)
			if err != nil {
				t.Fatalf("step %d list: %v", step, err)
			}
			counts := map[domain.Status]int{}
			for _, version := range versions {
				counts[version.Status]++
			}
			if counts[domain.StatusPublic] > 1 || counts[domain.StatusDraft] > 1 {
				t.Fatalf("step %d: invariant broken %v", step, counts)
			}
		}
	})
}

func TestRestoreVersion(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo views.Repository) {
		ctx := context.Background()
		svc := views.NewService(repo, views.WithNow(steppingClock()))
		publishText(ctx, t, svc, "first")
		publishText(ctx, t, svc, "second")

		versions, err := svc.ListVersions(ctx, testKey)
		if err != nil {
			t.Fatalf("list versions: %v", err)
		}
		if len(versions) != 2 || versions[0].Status != domain.StatusPublic || versions[1].Status != domain.StatusOldVersion {
			t.Fatalf("unexpected history %#v", versions)
		}
		if len(versions[1].LayoutKeys) != 1 || versions[1].LayoutKeys[0] != "ph" {
			t.Fatalf("unexpected layout keys %v", versions[1].LayoutKeys)
		}

		restored, err := svc.RestoreVersion(ctx, testKey, versions[1].ID)
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if !restored.IsDraft() || storedText(t, restored, "ph") != "first" {
			t.Fatal("expected the old data to be restored into the draft")
		}

		public, _ := svc.Load(ctx, testKey, false)
		if got := storedText(t, public, "ph"); got != "second" {
			t.Fatalf("expected restore to leave the public row alone, got %q", got)
		}

		other := views.Key{Tenant: "shop-2", Theme: "classic", View: "index"}
		if _, err := svc.RestoreVersion(ctx, other, versions[1].ID); !domain.IsConfigurationError(err) {
			t.Fatalf("expected configuration error for a foreign version, got %v", err)
		}
		if _, err := svc.RestoreVersion(ctx, testKey, uuid.New()); !domain.IsConfigurationError(err) {
			t.Fatalf("expected configuration error for an unknown version, got %v", err)
		}
	})
}

func TestWritesBumpThemeScope(t *testing.T) {
	ctx := context.Background()
	kv := cache.NewMemoryCache()
	svc := views.NewService(views.NewMemoryRepository(), views.WithCache(kv), views.WithNow(steppingClock()))

	draft, _ := svc.Load(ctx, testKey, true)
	if err := draft.SavePlaceholderLayout(ctx, "ph", textLayout("v1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := draft.Publish(ctx); err != nil {
		t.Fatalf("publish: %v", err)
	}
	version, _ := kv.Version(ctx, cache.ThemeScope("shop-1", "classic"))
	if version != 2 {
		t.Fatalf("expected two scope bumps, got %d", version)
	}
}

func TestLoadRequiresView(t *testing.T) {
	svc := views.NewService(views.NewMemoryRepository())
	if _, err := svc.Load(context.Background(), views.Key{Tenant: "t"}, true); err != views.ErrViewRequired {
		t.Fatalf("expected view required, got %v", err)
	}
}

func publishText(ctx context.Context, t *testing.T, svc views.Service, text string) {
	t.Helper()
	draft, err := svc.Load(ctx, testKey, true)
	if err != nil {
		t.Fatalf("load draft: %v", err)
	}
	if err := draft.SavePlaceholderLayout(ctx, "ph", textLayout(text)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := draft.Publish(ctx); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
