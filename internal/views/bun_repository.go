package views

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-xtheme/internal/domain"
)

// BunRepository implements Repository with optional caching. Status lookups
// bypass the cache because publication rewrites statuses in a transaction.
type BunRepository struct {
	db     *bun.DB
	repo   repository.Repository[*SavedViewConfig]
	cached repository.Repository[*SavedViewConfig]
}

// NewBunRepository creates a repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates a repository with caching support.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewSavedViewConfigRepository(db)
	cached := base
	if cacheService != nil && serializer != nil {
		cached = repositorycache.New(base, cacheService, serializer)
	}
	return &BunRepository{db: db, repo: base, cached: cached}
}

func (r *BunRepository) GetByStatus(ctx context.Context, key Key, status domain.Status) (*SavedViewConfig, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return whereKey(q, key).Where("?TableAlias.status = ?", status)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.updated_at DESC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "view_config", key.String())
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "view_config", Key: key.String() + "#" + string(status)}
	}
	return records[0], nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*SavedViewConfig, error) {
	record, err := r.cached.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "view_config", id.String())
	}
	return record, nil
}

func (r *BunRepository) ListVersions(ctx context.Context, key Key) ([]*SavedViewConfig, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return whereKey(q, key).OrderExpr("?TableAlias.updated_at DESC")
	}))
	if err != nil {
		return nil, err
	}
	sortNewestFirst(records)
	return records, nil
}

func (r *BunRepository) Create(ctx context.Context, record *SavedViewConfig) (*SavedViewConfig, error) {
	return r.cached.Create(ctx, record)
}

func (r *BunRepository) Update(ctx context.Context, record *SavedViewConfig) (*SavedViewConfig, error) {
	updated, err := r.cached.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("data", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "view_config", record.ID.String())
	}
	return updated, nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.cached.Delete(ctx, &SavedViewConfig{ID: id}); err != nil {
		return mapRepositoryError(err, "view_config", id.String())
	}
	return nil
}

func (r *BunRepository) Publish(ctx context.Context, draft *SavedViewConfig, at time.Time) (*SavedViewConfig, error) {
	if r.db == nil {
		return nil, fmt.Errorf("view config repository: database not configured")
	}
	if draft == nil {
		return nil, &NotFoundError{Resource: "draft view_config"}
	}
	id := draft.ID
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		stored := new(SavedViewConfig)
		err := tx.NewSelect().
			Model(stored).
			Where("?TableAlias.id = ?", id).
			Limit(1).
			Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			stored = cloneRecord(draft)
			stored.Status = domain.StatusDraft
			if _, err := tx.NewInsert().Model(stored).Exec(ctx); err != nil {
				return fmt.Errorf("insert draft view config: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load draft view config: %w", err)
		case stored.Status != domain.StatusDraft:
			return &NotFoundError{Resource: "draft view_config", Key: id.String()}
		}

		if _, err := tx.NewUpdate().
			Model((*SavedViewConfig)(nil)).
			Set("status = ?", domain.StatusOldVersion).
			Where("tenant_id = ?", stored.TenantID).
			Where("theme_id = ?", stored.ThemeID).
			Where("view = ?", stored.View).
			Where("status = ?", domain.StatusPublic).
			Exec(ctx); err != nil {
			return fmt.Errorf("demote public view config: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*SavedViewConfig)(nil)).
			Set("status = ?", domain.StatusPublic).
			Set("published_at = ?", at).
			Set("updated_at = ?", at).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("promote draft view config: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "view_config", id.String())
	}
	return record, nil
}

func whereKey(q *bun.SelectQuery, key Key) *bun.SelectQuery {
	return q.Where("?TableAlias.tenant_id = ?", key.Tenant).
		Where("?TableAlias.theme_id = ?", key.Theme).
		Where("?TableAlias.view = ?", key.View)
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
