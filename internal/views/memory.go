package views

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-xtheme/internal/domain"
)

// MemoryRepository provides an in-memory implementation of Repository.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*SavedViewConfig
}

// NewMemoryRepository constructs an empty memory-backed repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[uuid.UUID]*SavedViewConfig)}
}

func (r *MemoryRepository) GetByStatus(_ context.Context, key Key, status domain.Status) (*SavedViewConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.versionsLocked(key) {
		if record.Status == status {
			return cloneRecord(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "view_config", Key: key.String() + "#" + string(status)}
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*SavedViewConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "view_config", Key: id.String()}
	}
	return cloneRecord(record), nil
}

func (r *MemoryRepository) ListVersions(_ context.Context, key Key) ([]*SavedViewConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.versionsLocked(key)
	out := make([]*SavedViewConfig, 0, len(records))
	for _, record := range records {
		out = append(out, cloneRecord(record))
	}
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, record *SavedViewConfig) (*SavedViewConfig, error) {
	if record == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cloned := cloneRecord(record)
	r.byID[cloned.ID] = cloned
	return cloneRecord(cloned), nil
}

func (r *MemoryRepository) Update(_ context.Context, record *SavedViewConfig) (*SavedViewConfig, error) {
	if record == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "view_config", Key: record.ID.String()}
	}
	current.Data = cloneData(record.Data)
	current.UpdatedAt = record.UpdatedAt
	return cloneRecord(current), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return &NotFoundError{Resource: "view_config", Key: id.String()}
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) Publish(_ context.Context, draft *SavedViewConfig, at time.Time) (*SavedViewConfig, error) {
	if draft == nil {
		return nil, &NotFoundError{Resource: "draft view_config"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[draft.ID]
	switch {
	case !ok:
		current = cloneRecord(draft)
		current.Status = domain.StatusDraft
		r.byID[current.ID] = current
	case current.Status != domain.StatusDraft:
		return nil, &NotFoundError{Resource: "draft view_config", Key: draft.ID.String()}
	}
	for _, record := range r.byID {
		if record.ID != current.ID && record.matches(current.Key()) && record.Status == domain.StatusPublic {
			record.Status = domain.Demote(record.Status)
		}
	}
	published := at
	current.Status = domain.StatusPublic
	current.PublishedAt = &published
	current.UpdatedAt = at
	return cloneRecord(current), nil
}

func (r *MemoryRepository) versionsLocked(key Key) []*SavedViewConfig {
	var out []*SavedViewConfig
	for _, record := range r.byID {
		if record.matches(key) {
			out = append(out, record)
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(records []*SavedViewConfig) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].UpdatedAt.After(records[j].UpdatedAt)
		}
		return records[i].ID.String() > records[j].ID.String()
	})
}
