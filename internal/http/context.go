package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// Request headers read by HeaderContext.
const (
	HeaderTenant      = "X-Xtheme-Tenant"
	HeaderVisitor     = "X-Xtheme-Visitor"
	HeaderVisitorKind = "X-Xtheme-Visitor-Kind"
	HeaderEditor      = "X-Xtheme-Editor"
	HeaderGroups      = "X-Xtheme-Groups"
)

// ContextResolver builds the render context of a request. The view is filled
// in from the route.
type ContextResolver func(r *http.Request) (*renderctx.Context, error)

// HeaderContext reads the tenant and visitor from request headers, falling
// back to defaultTenant. The "edit" query parameter toggles edit mode. It suits
// trusted deployments behind an authenticating proxy and local previews.
func HeaderContext(defaultTenant string) ContextResolver {
	return func(r *http.Request) (*renderctx.Context, error) {
		tenant := strings.TrimSpace(r.Header.Get(HeaderTenant))
		if tenant == "" {
			tenant = defaultTenant
		}

		var visitor interfaces.Visitor
		if id := strings.TrimSpace(r.Header.Get(HeaderVisitor)); id != "" {
			editor, _ := strconv.ParseBool(r.Header.Get(HeaderEditor))
			visitor = renderctx.StaticVisitor{
				ID:     id,
				Type:   interfaces.VisitorKind(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderVisitorKind)))),
				Editor: editor,
				Groups: splitList(r.Header.Get(HeaderGroups)),
			}
		}

		rc := renderctx.New(renderctx.StaticTenant(tenant), visitor, "")
		rc.EditToggle = parseBoolQuery(r.URL.Query().Get("edit"), false)
		return rc, nil
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseBoolQuery(value string, defaultValue bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return defaultValue
	}
	return parsed
}
