package variants

import (
	"context"
	"errors"

	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

var ErrLayoutSourceRequired = errors.New("variants: layout source required")

// LayoutSource looks up stored layouts by data key. *views.ViewConfig
// satisfies it.
type LayoutSource interface {
	PlaceholderLayout(dataKey string) (*layouts.Layout, bool, error)
}

// Origin tells where a resolved layout came from.
type Origin string

const (
	OriginStored  Origin = "stored"
	OriginDefault Origin = "default"
	OriginEmpty   Origin = "empty"
)

// Resolved is one applicable layout of a placeholder.
type Resolved struct {
	Flavor   Flavor
	Key      string
	HelpText string
	Layout   *layouts.Layout
	Origin   Origin
}

// Stored reports whether the layout was loaded from configuration data.
func (r Resolved) Stored() bool { return r.Origin == OriginStored }

// Resolver selects the layouts that apply to a placeholder.
type Resolver struct {
	registry *Registry
	logger   interfaces.Logger
}

// NewResolver returns a resolver over registry. A nil registry resolves the
// base flavor only.
func NewResolver(registry *Registry, logger interfaces.Logger) *Resolver {
	return &Resolver{registry: registry, logger: logging.Ensure(logger)}
}

// Resolve returns the base layout first, then one entry per registered flavor
// valid for rc, in registration order. Each layout is the stored one, a clone
// of defaultLayout, or an empty layout, in that order. Undecodable stored data
// is logged and treated as missing.
func (r *Resolver) Resolve(ctx context.Context, source LayoutSource, placeholder string, defaultLayout *layouts.Layout, rc *renderctx.Context) ([]Resolved, error) {
	if source == nil {
		return nil, ErrLayoutSourceRequired
	}
	applicable := []Flavor{Base{}}
	for _, flavor := range r.registry.List() {
		if flavor.IsValidContext(ctx, rc) {
			applicable = append(applicable, flavor)
		}
	}

	out := make([]Resolved, 0, len(applicable))
	for _, flavor := range applicable {
		key := flavor.LayoutDataKey(placeholder, rc)
		layout, origin := r.layoutFor(source, key, placeholder, defaultLayout)
		layout.PlaceholderName = placeholder
		layout.Flavor = flavor.Identifier()
		out = append(out, Resolved{
			Flavor:   flavor,
			Key:      key,
			HelpText: flavor.HelpText(rc),
			Layout:   layout,
			Origin:   origin,
		})
	}
	return out, nil
}

func (r *Resolver) layoutFor(source LayoutSource, key, placeholder string, defaultLayout *layouts.Layout) (*layouts.Layout, Origin) {
	stored, ok, err := source.PlaceholderLayout(key)
	if err != nil {
		r.logger.Warn("variants.layout.decode_failed", "key", key, "error", err)
	}
	if err == nil && ok && stored != nil {
		return stored, OriginStored
	}
	if defaultLayout != nil {
		return defaultLayout.Clone(), OriginDefault
	}
	return layouts.New(placeholder), OriginEmpty
}
