package views

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/layouts"
)

// ViewConfig is a loaded configuration bound to its store. Mutations are
// only allowed in draft mode.
type ViewConfig struct {
	key       Key
	record    *SavedViewConfig
	persisted bool
	service   *service
}

func (vc *ViewConfig) Key() Key { return vc.key }

func (vc *ViewConfig) ID() uuid.UUID { return vc.record.ID }

func (vc *ViewConfig) Status() domain.Status { return vc.record.Status }

// IsDraft reports whether the configuration may be modified.
func (vc *ViewConfig) IsDraft() bool { return vc.record.Status.IsDraft() }

// Persisted reports whether the configuration has a stored row.
func (vc *ViewConfig) Persisted() bool { return vc.persisted }

// Record returns a copy of the underlying row.
func (vc *ViewConfig) Record() *SavedViewConfig { return cloneRecord(vc.record) }

// HasLayout reports whether data is stored under dataKey.
func (vc *ViewConfig) HasLayout(dataKey string) bool {
	_, ok := vc.record.Data[dataKey]
	return ok
}

// PlaceholderLayout decodes the layout stored under dataKey. The boolean is
// false when nothing is stored.
func (vc *ViewConfig) PlaceholderLayout(dataKey string) (*layouts.Layout, bool, error) {
	raw, ok := vc.record.Data[dataKey]
	if !ok || len(raw) == 0 {
		return nil, false, nil
	}
	layout, err := layouts.Unserialize(raw)
	if err != nil {
		return nil, false, fmt.Errorf("views: decode layout %q: %w", dataKey, err)
	}
	return layout, true, nil
}

// SavePlaceholderLayout stores layout under dataKey and persists the draft.
func (vc *ViewConfig) SavePlaceholderLayout(ctx context.Context, dataKey string, layout *layouts.Layout) error {
	if !domain.CanTransition(vc.record.Status, domain.TransitionSave) {
		return domain.NewVersionStateError(domain.ErrNotDraft, "cannot save in non-draft mode")
	}
	if dataKey == "" {
		return domain.NewValidationError(ErrViewRequired, "layout data key required")
	}
	encoded, err := json.Marshal(layout.SerializeCompact())
	if err != nil {
		return fmt.Errorf("views: encode layout %q: %w", dataKey, err)
	}
	vc.record.Data[dataKey] = encoded
	return vc.persist(ctx)
}

// Publish promotes the draft to PUBLIC, demoting the previous public row.
// A draft that was never saved is stored and promoted in the same step.
func (vc *ViewConfig) Publish(ctx context.Context) error {
	next, err := domain.Publish(vc.record.Status)
	if err != nil {
		return err
	}
	now := vc.service.now().UTC()
	if !vc.persisted {
		vc.record.CreatedAt = now
		vc.record.UpdatedAt = now
	}
	published, err := vc.service.repo.Publish(ctx, vc.record, now)
	if err != nil {
		return err
	}
	vc.record = published
	vc.record.Status = next
	vc.persisted = true
	if vc.record.Data == nil {
		vc.record.Data = map[string]json.RawMessage{}
	}
	vc.service.invalidate(ctx, vc.key)
	vc.service.logger.Info("views.published", "view", vc.key.View, "tenant", vc.key.Tenant, "theme", vc.key.Theme, "id", published.ID.String())
	return nil
}

// Revert discards the draft. The configuration becomes an unsaved copy of
// the public row. Reverting a draft that was never saved is a no-op.
func (vc *ViewConfig) Revert(ctx context.Context) error {
	if !domain.CanTransition(vc.record.Status, domain.TransitionRevert) {
		return domain.NewVersionStateError(domain.ErrNotDraft, "cannot revert in non-draft mode")
	}
	if !vc.persisted {
		return nil
	}
	if err := vc.service.repo.Delete(ctx, vc.record.ID); err != nil {
		return err
	}
	vc.service.invalidate(ctx, vc.key)
	vc.service.logger.Info("views.reverted", "view", vc.key.View, "tenant", vc.key.Tenant, "theme", vc.key.Theme, "id", vc.record.ID.String())

	fresh, err := vc.service.newDraft(ctx, vc.key)
	if err != nil {
		return err
	}
	vc.record = fresh.record
	vc.persisted = false
	return nil
}

func (vc *ViewConfig) persist(ctx context.Context) error {
	now := vc.service.now().UTC()
	vc.record.UpdatedAt = now

	var (
		saved *SavedViewConfig
		err   error
	)
	if vc.persisted {
		saved, err = vc.service.repo.Update(ctx, vc.record)
	} else {
		vc.record.CreatedAt = now
		saved, err = vc.service.repo.Create(ctx, vc.record)
	}
	if err != nil {
		return err
	}
	if saved != nil {
		vc.record = cloneRecord(saved)
		if vc.record.Data == nil {
			vc.record.Data = map[string]json.RawMessage{}
		}
	}
	vc.persisted = true
	vc.service.invalidate(ctx, vc.key)
	return nil
}
