package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-xtheme/internal/cache"
	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

var (
	ErrRepositoryRequired = errors.New("views: repository required")
	ErrViewRequired       = errors.New("views: view name required")
	ErrVersionNotFound    = errors.New("views: version not found")
)

// Service loads and versions view configurations.
type Service interface {
	// Load returns the configuration of key. In draft mode it returns the
	// current draft, an unsaved copy of the public row, or a fresh draft, in
	// that order. Otherwise it returns the public row or an empty read-only
	// configuration.
	Load(ctx context.Context, key Key, draft bool) (*ViewConfig, error)
	ListVersions(ctx context.Context, key Key) ([]Version, error)
	// RestoreVersion copies the data of a stored version into the draft of key.
	RestoreVersion(ctx context.Context, key Key, id uuid.UUID) (*ViewConfig, error)
}

// Version summarises one stored row for history listings.
type Version struct {
	ID          uuid.UUID     `json:"id"`
	Status      domain.Status `json:"status"`
	LayoutKeys  []string      `json:"layout_keys"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
}

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithIDGenerator overrides the default ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCache bumps the tenant/theme scope on every write.
func WithCache(kv interfaces.KeyValueCache) ServiceOption {
	return func(s *service) {
		s.cache = kv
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	repo   Repository
	cache  interfaces.KeyValueCache
	id     IDGenerator
	now    func() time.Time
	logger interfaces.Logger
}

// NewService constructs a view configuration service.
func NewService(repo Repository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{
		repo:   repo,
		id:     uuid.New,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Load(ctx context.Context, key Key, draft bool) (*ViewConfig, error) {
	key = key.Normalize()
	if key.View == "" {
		return nil, ErrViewRequired
	}
	if !draft {
		return s.loadPublic(ctx, key)
	}
	return s.loadDraft(ctx, key)
}

func (s *service) loadPublic(ctx context.Context, key Key) (*ViewConfig, error) {
	record, err := s.repo.GetByStatus(ctx, key, domain.StatusPublic)
	if err == nil {
		return s.bind(key, record, true), nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return s.bind(key, &SavedViewConfig{
		TenantID: key.Tenant,
		ThemeID:  key.Theme,
		View:     key.View,
		Status:   domain.StatusPublic,
	}, false), nil
}

func (s *service) loadDraft(ctx context.Context, key Key) (*ViewConfig, error) {
	record, err := s.repo.GetByStatus(ctx, key, domain.StatusDraft)
	if err == nil {
		return s.bind(key, record, true), nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return s.newDraft(ctx, key)
}

// newDraft returns an unsaved draft seeded from the public row when one exists.
func (s *service) newDraft(ctx context.Context, key Key) (*ViewConfig, error) {
	draft := &SavedViewConfig{
		ID:       s.id(),
		TenantID: key.Tenant,
		ThemeID:  key.Theme,
		View:     key.View,
		Status:   domain.StatusDraft,
	}
	public, err := s.repo.GetByStatus(ctx, key, domain.StatusPublic)
	switch {
	case err == nil:
		draft.Data = cloneData(public.Data)
	case !isNotFound(err):
		return nil, err
	}
	return s.bind(key, draft, false), nil
}

func (s *service) ListVersions(ctx context.Context, key Key) ([]Version, error) {
	key = key.Normalize()
	records, err := s.repo.ListVersions(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([]Version, 0, len(records))
	for _, record := range records {
		keys := make([]string, 0, len(record.Data))
		for dataKey := range record.Data {
			keys = append(keys, dataKey)
		}
		sort.Strings(keys)
		out = append(out, Version{
			ID:          record.ID,
			Status:      record.Status,
			LayoutKeys:  keys,
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
			PublishedAt: record.PublishedAt,
		})
	}
	return out, nil
}

func (s *service) RestoreVersion(ctx context.Context, key Key, id uuid.UUID) (*ViewConfig, error) {
	key = key.Normalize()
	source, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NewConfigurationError(ErrVersionNotFound, fmt.Sprintf("version %s not found", id))
		}
		return nil, err
	}
	if !source.matches(key) {
		return nil, domain.NewConfigurationError(ErrVersionNotFound, fmt.Sprintf("version %s does not belong to %s", id, key))
	}

	vc, err := s.loadDraft(ctx, key)
	if err != nil {
		return nil, err
	}
	vc.record.Data = cloneData(source.Data)
	if err := vc.persist(ctx); err != nil {
		return nil, err
	}
	s.logger.Info("views.restored", "view", key.View, "tenant", key.Tenant, "theme", key.Theme, "version", id.String())
	return vc, nil
}

func (s *service) bind(key Key, record *SavedViewConfig, persisted bool) *ViewConfig {
	if record.Data == nil {
		record.Data = map[string]json.RawMessage{}
	}
	return &ViewConfig{
		key:       key,
		record:    record,
		persisted: persisted,
		service:   s,
	}
}

func (s *service) invalidate(ctx context.Context, key Key) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.BumpVersion(ctx, cache.ThemeScope(key.Tenant, key.Theme)); err != nil {
		s.logger.Warn("views.cache.bump_failed", "view", key.View, "tenant", key.Tenant, "error", err)
	}
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
