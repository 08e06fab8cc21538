package themes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySettingsRepository provides an in-memory implementation of SettingsRepository.
type MemorySettingsRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*ThemeSettings
	byKey map[string]uuid.UUID
}

// NewMemorySettingsRepository constructs an empty memory-backed repository.
func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{
		byID:  make(map[uuid.UUID]*ThemeSettings),
		byKey: make(map[string]uuid.UUID),
	}
}

func (r *MemorySettingsRepository) Get(_ context.Context, tenant, theme string) (*ThemeSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[settingsKey(tenant, theme)]
	if !ok {
		return nil, &NotFoundError{Resource: "theme_settings", Key: settingsKey(tenant, theme)}
	}
	return cloneSettings(r.byID[id]), nil
}

func (r *MemorySettingsRepository) GetActive(_ context.Context, tenant string) (*ThemeSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.sortedLocked(tenant) {
		if record.Active {
			return cloneSettings(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "active theme", Key: tenant}
}

func (r *MemorySettingsRepository) ListByTenant(_ context.Context, tenant string) ([]*ThemeSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.sortedLocked(tenant)
	out := make([]*ThemeSettings, 0, len(records))
	for _, record := range records {
		out = append(out, cloneSettings(record))
	}
	return out, nil
}

func (r *MemorySettingsRepository) Create(_ context.Context, record *ThemeSettings) (*ThemeSettings, error) {
	if record == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.storeLocked(record)
	return cloneSettings(stored), nil
}

func (r *MemorySettingsRepository) Update(_ context.Context, record *ThemeSettings) (*ThemeSettings, error) {
	if record == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[record.ID]; !ok {
		return nil, &NotFoundError{Resource: "theme_settings", Key: record.ID.String()}
	}
	stored := r.storeLocked(record)
	return cloneSettings(stored), nil
}

func (r *MemorySettingsRepository) Activate(_ context.Context, record *ThemeSettings) (*ThemeSettings, error) {
	if record == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := record.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	for _, existing := range r.byID {
		if existing.TenantID == record.TenantID && existing.Active {
			existing.Active = false
			existing.UpdatedAt = now
		}
	}

	target := cloneSettings(record)
	if current, ok := r.byID[target.ID]; ok {
		target.CreatedAt = current.CreatedAt
	}
	target.Active = true
	stored := r.storeLocked(target)
	return cloneSettings(stored), nil
}

func (r *MemorySettingsRepository) storeLocked(record *ThemeSettings) *ThemeSettings {
	cloned := cloneSettings(record)
	r.byID[cloned.ID] = cloned
	r.byKey[settingsKey(cloned.TenantID, cloned.ThemeID)] = cloned.ID
	return cloned
}

func (r *MemorySettingsRepository) sortedLocked(tenant string) []*ThemeSettings {
	var out []*ThemeSettings
	for _, record := range r.byID {
		if record.TenantID == tenant {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ThemeID < out[j].ThemeID })
	return out
}
