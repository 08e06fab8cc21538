package variants

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// BaseIdentifier names the generic flavor that always applies.
const BaseIdentifier = "base"

// Flavor is one layout variant of a placeholder.
type Flavor interface {
	Identifier() string
	Name() string
	// IsValidContext reports whether the flavor applies to rc.
	IsValidContext(ctx context.Context, rc *renderctx.Context) bool
	HelpText(rc *renderctx.Context) string
	// LayoutDataKey derives the storage key of the flavor's layout for
	// placeholder under rc. Keys of different flavors never collide.
	LayoutDataKey(placeholder string, rc *renderctx.Context) string
}

// Base is the generic flavor keyed by the placeholder name alone.
type Base struct{}

func (Base) Identifier() string { return BaseIdentifier }

func (Base) Name() string { return "Generic" }

func (Base) IsValidContext(context.Context, *renderctx.Context) bool { return true }

func (Base) HelpText(*renderctx.Context) string {
	return "This layout is shown when no more specific layout applies."
}

func (Base) LayoutDataKey(placeholder string, _ *renderctx.Context) string { return placeholder }

// VisitorFlavor applies to a class of visitors.
type VisitorFlavor struct {
	id    string
	name  string
	help  string
	match func(rc *renderctx.Context) bool
}

// Anonymous applies to visitors that are not logged in.
func Anonymous() VisitorFlavor {
	return VisitorFlavor{
		id:   "anonymous",
		name: "Anonymous visitors",
		help: "This layout is shown to visitors who are not logged in.",
		match: func(rc *renderctx.Context) bool {
			return !rc.IsAuthenticated()
		},
	}
}

// Authenticated applies to any logged-in visitor, alongside the person and
// organization flavors.
func Authenticated() VisitorFlavor {
	return VisitorFlavor{
		id:   "authenticated",
		name: "Logged-in visitors",
		help: "This layout is shown to every logged-in visitor.",
		match: func(rc *renderctx.Context) bool {
			return rc.IsAuthenticated()
		},
	}
}

// Person applies to visitors logged in as a person contact.
func Person() VisitorFlavor {
	return kindFlavor(interfaces.VisitorPerson, "Person contacts", "This layout is shown to visitors logged in as a person.")
}

// Organization applies to visitors logged in as an organization contact.
func Organization() VisitorFlavor {
	return kindFlavor(interfaces.VisitorOrganization, "Organization contacts", "This layout is shown to visitors logged in as an organization.")
}

func kindFlavor(kind interfaces.VisitorKind, name, help string) VisitorFlavor {
	return VisitorFlavor{
		id:   string(kind),
		name: name,
		help: help,
		match: func(rc *renderctx.Context) bool {
			return rc.VisitorKind() == kind
		},
	}
}

func (f VisitorFlavor) Identifier() string { return f.id }

func (f VisitorFlavor) Name() string { return f.name }

func (f VisitorFlavor) IsValidContext(_ context.Context, rc *renderctx.Context) bool {
	return f.match(rc)
}

func (f VisitorFlavor) HelpText(*renderctx.Context) string { return f.help }

func (f VisitorFlavor) LayoutDataKey(placeholder string, _ *renderctx.Context) string {
	return placeholder + "_" + f.id
}

// EntityFlavor applies when the context carries an entity of its kind. Each
// entity gets its own layout.
type EntityFlavor struct {
	kind string
	name string
}

// Product applies to pages rendered for a product.
func Product() EntityFlavor {
	return EntityFlavor{kind: renderctx.EntityProduct, name: "Product"}
}

// Category applies to pages rendered for a category.
func Category() EntityFlavor {
	return EntityFlavor{kind: renderctx.EntityCategory, name: "Category"}
}

// NewEntityFlavor binds a flavor to an arbitrary entity kind.
func NewEntityFlavor(kind, name string) EntityFlavor {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if name == "" {
		name = kind
	}
	return EntityFlavor{kind: kind, name: name}
}

func (f EntityFlavor) Identifier() string { return f.kind }

func (f EntityFlavor) Name() string { return f.name }

func (f EntityFlavor) IsValidContext(_ context.Context, rc *renderctx.Context) bool {
	entity, ok := rc.Entity(f.kind)
	return ok && entity.EntityID() != ""
}

func (f EntityFlavor) HelpText(rc *renderctx.Context) string {
	entity, ok := rc.Entity(f.kind)
	if !ok {
		return fmt.Sprintf("This layout is shown for a single %s.", strings.ToLower(f.name))
	}
	return fmt.Sprintf("This layout is shown only for %s %q.", strings.ToLower(f.name), entity.DisplayName())
}

func (f EntityFlavor) LayoutDataKey(placeholder string, rc *renderctx.Context) string {
	entity, ok := rc.Entity(f.kind)
	if !ok {
		return placeholder + "_" + f.kind
	}
	return placeholder + "_" + f.kind + "-" + entity.EntityID()
}
