package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// NoopCache never stores anything. Used when caching is disabled.
type NoopCache struct{}

var _ interfaces.KeyValueCache = NoopCache{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopCache) BumpVersion(context.Context, string) (int64, error) { return 0, nil }

func (NoopCache) Version(context.Context, string) (int64, error) { return 0, nil }
