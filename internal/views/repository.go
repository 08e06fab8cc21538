package views

import (
	"context"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-xtheme/internal/domain"
)

// Repository persists SavedViewConfig rows.
type Repository interface {
	// GetByStatus returns the row of key in status, newest first when the
	// store holds several OLD_VERSION rows.
	GetByStatus(ctx context.Context, key Key, status domain.Status) (*SavedViewConfig, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SavedViewConfig, error)
	// ListVersions returns every row of key, newest first.
	ListVersions(ctx context.Context, key Key) ([]*SavedViewConfig, error)
	Create(ctx context.Context, record *SavedViewConfig) (*SavedViewConfig, error)
	Update(ctx context.Context, record *SavedViewConfig) (*SavedViewConfig, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Publish demotes the PUBLIC row of the draft's tuple to OLD_VERSION and
	// promotes the draft to PUBLIC in one transition. A draft without a
	// stored row is inserted as part of the same transition.
	Publish(ctx context.Context, draft *SavedViewConfig, at time.Time) (*SavedViewConfig, error)
}

// NotFoundError is returned when a view configuration cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewSavedViewConfigRepository creates the generic bun repository for rows.
func NewSavedViewConfigRepository(db *bun.DB) repository.Repository[*SavedViewConfig] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*SavedViewConfig]{
		NewRecord:          func() *SavedViewConfig { return &SavedViewConfig{} },
		GetID:              func(record *SavedViewConfig) uuid.UUID { return record.ID },
		SetID:              func(record *SavedViewConfig, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(record *SavedViewConfig) string { return record.ID.String() },
	})
}
