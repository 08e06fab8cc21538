package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/editor"
	"github.com/goliatone/go-xtheme/internal/plugins"
	"github.com/goliatone/go-xtheme/internal/rendering"
	"github.com/goliatone/go-xtheme/internal/themes"
	"github.com/goliatone/go-xtheme/internal/variants"
	"github.com/goliatone/go-xtheme/internal/views"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry, err := themes.NewRegistry(themes.Theme{ID: "classic"}, themes.Theme{ID: "modern"})
	if err != nil {
		t.Fatalf("theme registry: %v", err)
	}
	themeSvc := themes.NewService(registry, themes.NewMemorySettingsRepository(), themes.WithDefaultTheme("classic"))
	viewSvc := views.NewService(views.NewMemoryRepository())

	pluginRegistry := plugins.NewRegistry()
	if err := plugins.RegisterBuiltins(pluginRegistry, plugins.BuiltinOptions{}); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	renderer := rendering.NewRenderer(themeSvc, viewSvc, variants.NewResolver(variants.DefaultRegistry(), nil), plugins.NewCellRenderer(pluginRegistry))
	api := NewAPI(renderer, viewSvc, themeSvc, editor.New(pluginRegistry), WithContextResolver(HeaderContext("shop-1")))

	server := httptest.NewServer(api.Routes())
	t.Cleanup(server.Close)
	return server
}

func editorRequest(t *testing.T, method, target, contentType, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(HeaderVisitor, "admin")
	req.Header.Set(HeaderVisitorKind, "person")
	req.Header.Set(HeaderEditor, "true")
	return req
}

func do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func TestCommandEndpointEditsDraft(t *testing.T) {
	server := newTestServer(t)
	commands := server.URL + "/xtheme/index/front/commands"

	resp, body := do(t, editorRequest(t, http.MethodPost, commands, "application/json", `{"command":"add_row"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var payload commandResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Changed || payload.Status != string(domain.StatusDraft) || len(payload.Layout.Rows) != 1 {
		t.Fatalf("unexpected response %s", body)
	}

	form := url.Values{"command": {"change_plugin"}, "x": {"0"}, "y": {"0"}, "plugin": {"text"}}
	resp, body = do(t, editorRequest(t, http.MethodPost, commands, "application/x-www-form-urlencoded", form.Encode()))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for form body, got %d: %s", resp.StatusCode, body)
	}

	form = url.Values{"command": {"save_config"}, "x": {"0"}, "y": {"0"}, "config.text": {"Hello"}, "config.tag": {"p"}}
	resp, body = do(t, editorRequest(t, http.MethodPost, commands, "application/x-www-form-urlencoded", form.Encode()))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for save_config, got %d: %s", resp.StatusCode, body)
	}

	preview := editorRequest(t, http.MethodGet, server.URL+"/xtheme/index/front?edit=1", "", "")
	resp, body = do(t, preview)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "<p>Hello</p>") || !strings.Contains(string(body), `data-xt-row="0"`) {
		t.Fatalf("expected draft preview in edit mode, got %d: %s", resp.StatusCode, body)
	}

	public, _ := http.NewRequest(http.MethodGet, server.URL+"/xtheme/index/front", nil)
	resp, body = do(t, public)
	if resp.StatusCode != http.StatusOK || strings.Contains(string(body), "Hello") {
		t.Fatalf("expected unpublished draft to stay hidden, got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, editorRequest(t, http.MethodPost, commands, "application/json", `{"command":"publish"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("publish: %d %s", resp.StatusCode, body)
	}
	public, _ = http.NewRequest(http.MethodGet, server.URL+"/xtheme/index/front", nil)
	if _, body = do(t, public); !strings.Contains(string(body), "<p>Hello</p>") {
		t.Fatalf("expected published layout, got %s", body)
	}

	versions, _ := http.NewRequest(http.MethodGet, server.URL+"/xtheme/_versions/index", nil)
	resp, body = do(t, versions)
	var listing struct {
		Theme    string          `json:"theme"`
		Versions []views.Version `json:"versions"`
	}
	if err := json.Unmarshal(body, &listing); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("versions: %d %s", resp.StatusCode, body)
	}
	if listing.Theme != "classic" || len(listing.Versions) != 1 || listing.Versions[0].Status != domain.StatusPublic {
		t.Fatalf("unexpected versions %s", body)
	}
}

func TestCommandEndpointErrors(t *testing.T) {
	server := newTestServer(t)
	commands := server.URL + "/xtheme/index/front/commands"

	anonymous, _ := http.NewRequest(http.MethodPost, commands, strings.NewReader(`{"command":"add_row"}`))
	anonymous.Header.Set("Content-Type", "application/json")
	if resp, _ := do(t, anonymous); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for visitors without edit rights, got %d", resp.StatusCode)
	}

	resp, body := do(t, editorRequest(t, http.MethodPost, commands, "application/json", `{"command":"add_cell"}`))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, body)
	}
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Issues) != 1 || payload.Issues[0].Field != "y" {
		t.Fatalf("expected an issue for y, got %s", body)
	}

	resp, body = do(t, editorRequest(t, http.MethodPost, commands, "application/x-www-form-urlencoded", "command=add_cell&y=top"))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed coordinates, got %d: %s", resp.StatusCode, body)
	}
}

func TestActivateThemeEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, editorRequest(t, http.MethodPost, server.URL+"/xtheme/themes/modern/activate", "", ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	versions, _ := http.NewRequest(http.MethodGet, server.URL+"/xtheme/_versions/index", nil)
	if _, body = do(t, versions); !strings.Contains(string(body), `"theme":"modern"`) {
		t.Fatalf("expected modern to be active, got %s", body)
	}

	if resp, _ := do(t, editorRequest(t, http.MethodPost, server.URL+"/xtheme/themes/missing/activate", "", "")); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown theme, got %d", resp.StatusCode)
	}
}

func TestPlaceholderNamedVersionsPreviews(t *testing.T) {
	server := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/xtheme/index/versions", nil)
	resp, body := do(t, req)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `id="xt-ph-versions"`) {
		t.Fatalf("expected the versions placeholder to render, got %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html preview, got %q", ct)
	}
}

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.NewConfigurationError(domain.ErrUnknownTheme, "unknown"), http.StatusNotFound},
		{domain.NewVersionStateError(domain.ErrNotDraft, "cannot save in non-draft mode"), http.StatusConflict},
		{domain.NewValidationError(errors.New("bad"), "invalid"), http.StatusUnprocessableEntity},
		{ErrForbidden, http.StatusForbidden},
		{rendering.ErrPlaceholderRequired, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if status, _ := mapError(tc.err); status != tc.status {
			t.Fatalf("expected %d for %v, got %d", tc.status, tc.err, status)
		}
	}
}
