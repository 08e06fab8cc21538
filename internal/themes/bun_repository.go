package themes

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"
)

// BunSettingsRepository implements SettingsRepository with optional caching.
// Lookups by tenant always hit the database because activation rewrites rows
// inside a transaction.
type BunSettingsRepository struct {
	db     *bun.DB
	repo   repository.Repository[*ThemeSettings]
	cached repository.Repository[*ThemeSettings]
}

// NewBunSettingsRepository creates a settings repository without caching.
func NewBunSettingsRepository(db *bun.DB) *BunSettingsRepository {
	return NewBunSettingsRepositoryWithCache(db, nil, nil)
}

// NewBunSettingsRepositoryWithCache creates a settings repository with caching support.
func NewBunSettingsRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunSettingsRepository {
	base := NewSettingsRepository(db)
	cached := base
	if cacheService != nil && serializer != nil {
		cached = repositorycache.New(base, cacheService, serializer)
	}
	return &BunSettingsRepository{db: db, repo: base, cached: cached}
}

func (r *BunSettingsRepository) Get(ctx context.Context, tenant, theme string) (*ThemeSettings, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.tenant_id = ?", tenant)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.theme_id = ?", theme)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "theme_settings", settingsKey(tenant, theme))
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "theme_settings", Key: settingsKey(tenant, theme)}
	}
	return records[0], nil
}

func (r *BunSettingsRepository) GetActive(ctx context.Context, tenant string) (*ThemeSettings, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.tenant_id = ?", tenant).
				Where("?TableAlias.active = ?", true).
				OrderExpr("?TableAlias.theme_id ASC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "active theme", tenant)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "active theme", Key: tenant}
	}
	return records[0], nil
}

func (r *BunSettingsRepository) ListByTenant(ctx context.Context, tenant string) ([]*ThemeSettings, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.tenant_id = ?", tenant).OrderExpr("?TableAlias.theme_id ASC")
	}))
	return records, err
}

func (r *BunSettingsRepository) Create(ctx context.Context, record *ThemeSettings) (*ThemeSettings, error) {
	return r.cached.Create(ctx, record)
}

func (r *BunSettingsRepository) Update(ctx context.Context, record *ThemeSettings) (*ThemeSettings, error) {
	updated, err := r.cached.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("settings", "active", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "theme_settings", record.ID.String())
	}
	return updated, nil
}

func (r *BunSettingsRepository) Activate(ctx context.Context, record *ThemeSettings) (*ThemeSettings, error) {
	if r.db == nil {
		return nil, fmt.Errorf("theme settings repository: database not configured")
	}
	target := cloneSettings(record)
	target.Active = true

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*ThemeSettings)(nil)).
			Set("active = ?", false).
			Set("updated_at = ?", target.UpdatedAt).
			Where("tenant_id = ?", target.TenantID).
			Where("id <> ?", target.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("deactivate themes: %w", err)
		}

		exists, err := tx.NewSelect().
			Model((*ThemeSettings)(nil)).
			Where("?TableAlias.id = ?", target.ID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("lookup theme settings: %w", err)
		}
		if !exists {
			if _, err := tx.NewInsert().Model(target).Exec(ctx); err != nil {
				return fmt.Errorf("insert theme settings: %w", err)
			}
			return nil
		}
		if _, err := tx.NewUpdate().
			Model((*ThemeSettings)(nil)).
			Set("active = ?", true).
			Set("updated_at = ?", target.UpdatedAt).
			Where("id = ?", target.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("activate theme: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, target.TenantID, target.ThemeID)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
