package renderctx

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

const (
	EntityProduct  = "product"
	EntityCategory = "category"
)

// Context is the request-scoped rendering context threaded through
// variants, plugins and the renderer. It replaces any process-wide notion
// of a current theme.
type Context struct {
	Tenant  interfaces.Tenant
	Visitor interfaces.Visitor
	// Theme is the identifier of the active theme, filled in by the renderer.
	Theme string
	// View identifies the page view whose placeholders are rendered.
	View string
	// EditToggle is the visitor's edit-mode switch. See EditMode.
	EditToggle bool
	Entities   map[string]interfaces.Entity
	Values     map[string]any
}

// New returns a context for the tenant, visitor and view.
func New(tenant interfaces.Tenant, visitor interfaces.Visitor, view string) *Context {
	return &Context{
		Tenant:   tenant,
		Visitor:  visitor,
		View:     strings.TrimSpace(view),
		Entities: map[string]interfaces.Entity{},
		Values:   map[string]any{},
	}
}

// TenantID returns the tenant identifier or "" when absent.
func (c *Context) TenantID() string {
	if c == nil || c.Tenant == nil {
		return ""
	}
	return c.Tenant.TenantID()
}

// VisitorKind returns the visitor type, treating a missing visitor as anonymous.
func (c *Context) VisitorKind() interfaces.VisitorKind {
	if c == nil || c.Visitor == nil {
		return interfaces.VisitorAnonymous
	}
	kind := c.Visitor.Kind()
	if kind == "" {
		return interfaces.VisitorAnonymous
	}
	return kind
}

// IsAuthenticated reports whether the visitor is a known contact.
func (c *Context) IsAuthenticated() bool {
	return c.VisitorKind() != interfaces.VisitorAnonymous
}

// EditMode is true only when the visitor may edit and has the toggle on.
func (c *Context) EditMode() bool {
	if c == nil || c.Visitor == nil || !c.EditToggle {
		return false
	}
	return c.Visitor.CanEdit()
}

// Entity returns the entity registered under kind.
func (c *Context) Entity(kind string) (interfaces.Entity, bool) {
	if c == nil || c.Entities == nil {
		return nil, false
	}
	entity, ok := c.Entities[kind]
	if !ok || entity == nil {
		return nil, false
	}
	return entity, true
}

// WithEntity returns a copy of the context carrying entity under kind.
func (c *Context) WithEntity(kind string, entity interfaces.Entity) *Context {
	next := c.Clone()
	next.Entities[kind] = entity
	return next
}

// Clone returns a shallow copy with independent maps.
func (c *Context) Clone() *Context {
	if c == nil {
		return New(nil, nil, "")
	}
	next := *c
	next.Entities = maps.Clone(c.Entities)
	if next.Entities == nil {
		next.Entities = map[string]interfaces.Entity{}
	}
	next.Values = maps.Clone(c.Values)
	if next.Values == nil {
		next.Values = map[string]any{}
	}
	return &next
}

// Env flattens the context into a map for expression evaluation and templates.
func (c *Context) Env(ctx context.Context) map[string]any {
	visitor := map[string]any{
		"kind":          string(c.VisitorKind()),
		"authenticated": c.IsAuthenticated(),
		"id":            "",
	}
	if c != nil && c.Visitor != nil {
		visitor["id"] = c.Visitor.VisitorID()
		visitor["in_group"] = func(group string) bool {
			ok, err := c.Visitor.InGroup(ctx, group)
			return err == nil && ok
		}
	} else {
		visitor["in_group"] = func(string) bool { return false }
	}

	entities := map[string]any{}
	if c != nil {
		for kind, entity := range c.Entities {
			if entity == nil {
				continue
			}
			entities[kind] = map[string]any{
				"id":   entity.EntityID(),
				"name": entity.DisplayName(),
			}
		}
	}

	env := map[string]any{
		"tenant":    c.TenantID(),
		"visitor":   visitor,
		"entities":  entities,
		"edit_mode": c.EditMode(),
	}
	if c != nil {
		env["theme"] = c.Theme
		env["view"] = c.View
		env["values"] = maps.Clone(c.Values)
	}
	return env
}
