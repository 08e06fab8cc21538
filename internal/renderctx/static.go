package renderctx

import (
	"context"
	"slices"

	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// StaticTenant is a fixed tenant identity.
type StaticTenant string

func (t StaticTenant) TenantID() string { return string(t) }

// StaticVisitor is an in-memory visitor used by the CLI preview and tests.
type StaticVisitor struct {
	ID     string
	Type   interfaces.VisitorKind
	Editor bool
	Groups []string
}

func (v StaticVisitor) VisitorID() string { return v.ID }

func (v StaticVisitor) Kind() interfaces.VisitorKind {
	if v.Type == "" {
		return interfaces.VisitorAnonymous
	}
	return v.Type
}

func (v StaticVisitor) CanEdit() bool { return v.Editor }

func (v StaticVisitor) InGroup(_ context.Context, group string) (bool, error) {
	return slices.Contains(v.Groups, group), nil
}

// StaticEntity is a fixed read-only entity.
type StaticEntity struct {
	ID   string
	Name string
}

func (e StaticEntity) EntityID() string    { return e.ID }
func (e StaticEntity) DisplayName() string { return e.Name }
