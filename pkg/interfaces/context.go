package interfaces

import "context"

// Tenant identifies the shop a request is served for.
type Tenant interface {
	TenantID() string
}

// VisitorKind discriminates the visitor types understood by layout variants.
type VisitorKind string

const (
	VisitorAnonymous    VisitorKind = "anonymous"
	VisitorPerson       VisitorKind = "person"
	VisitorOrganization VisitorKind = "organization"
)

// Visitor describes the contact viewing the page.
type Visitor interface {
	VisitorID() string
	Kind() VisitorKind
	// CanEdit reports whether the visitor may use the layout editor.
	CanEdit() bool
	// InGroup reports whether the visitor belongs to the named contact group.
	InGroup(ctx context.Context, group string) (bool, error)
}

// Entity is a read-only domain object (product, category, ...) used to build
// variant predicates, layout data keys and help text.
type Entity interface {
	EntityID() string
	DisplayName() string
}
