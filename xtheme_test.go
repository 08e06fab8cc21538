package xtheme_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-xtheme"
	"github.com/goliatone/go-xtheme/internal/editor"
	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

func newModule(t *testing.T, mutate func(*xtheme.Config)) *xtheme.Module {
	t.Helper()
	cfg := xtheme.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	module, err := xtheme.New(cfg, xtheme.WithThemes(xtheme.Theme{ID: "classic", Name: "Classic"}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func renderContext(kind interfaces.VisitorKind, edit bool) *xtheme.RenderContext {
	rc := renderctx.New(renderctx.StaticTenant("shop-1"), renderctx.StaticVisitor{ID: "v1", Type: kind, Editor: edit}, "index")
	rc.EditToggle = edit
	return rc
}

func TestModuleEditPublishRender(t *testing.T) {
	module := newModule(t, nil)
	ctx := xtheme.WithRequestCache(context.Background())

	session, err := module.OpenEditor(ctx, renderContext(interfaces.VisitorPerson, true), "front", "", nil, xtheme.SelectCell(0, 0))
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	if session.X != 0 || session.Y != 0 {
		t.Fatalf("expected cell (0,0) to be selected, got (%d,%d)", session.X, session.Y)
	}

	for _, cmd := range []xtheme.EditorCommand{
		{Command: editor.AddRow},
		{Command: editor.ChangePlugin, Plugin: editor.String("text")},
		{Command: editor.SaveConfig, Config: map[string]any{"text": "Welcome"}},
	} {
		outcome, err := module.Dispatch(ctx, session, cmd)
		if err != nil {
			t.Fatalf("dispatch %s: %v", cmd.Command, err)
		}
		if !outcome.Changed {
			t.Fatalf("expected %s to change the layout", cmd.Command)
		}
	}

	public := renderContext(interfaces.VisitorAnonymous, false)
	before, err := module.RenderPlaceholder(context.Background(), public, "front", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(before, "Welcome") {
		t.Fatal("expected draft content to stay private before publishing")
	}

	if _, err := module.Dispatch(ctx, session, xtheme.EditorCommand{Command: editor.Publish}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if session.Config.Status() != xtheme.StatusPublic {
		t.Fatalf("expected public status, got %s", session.Config.Status())
	}

	after, err := module.RenderPlaceholder(context.Background(), public, "front", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(after, "<p>Welcome</p>") {
		t.Fatalf("expected published content, got %s", after)
	}
}

func TestModuleRendersDefaultLayout(t *testing.T) {
	module := newModule(t, nil)
	fallback := layouts.New("hero")
	fallback.AddPlugin("html", map[string]any{"html": "<b>Sale</b>"})

	out, err := module.RenderPlaceholder(context.Background(), renderContext(interfaces.VisitorAnonymous, false), "hero", fallback)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<b>Sale</b>") {
		t.Fatalf("expected default layout output, got %s", out)
	}
}

func TestModuleEditingPublicFails(t *testing.T) {
	module := newModule(t, nil)
	ctx := context.Background()

	session, err := module.OpenEditor(ctx, renderContext(interfaces.VisitorPerson, true), "front", "", nil)
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	if _, err := module.Dispatch(ctx, session, xtheme.EditorCommand{Command: editor.AddRow}); err != nil {
		t.Fatalf("add row: %v", err)
	}
	if _, err := module.Dispatch(ctx, session, xtheme.EditorCommand{Command: editor.Publish}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := module.Dispatch(ctx, session, xtheme.EditorCommand{Command: editor.AddRow}); !xtheme.IsVersionStateError(err) {
		t.Fatalf("expected version state error, got %v", err)
	}
}

func TestModuleEditorDisabled(t *testing.T) {
	module := newModule(t, func(cfg *xtheme.Config) { cfg.Features.Editor = false })
	ctx := context.Background()

	session, err := module.OpenEditor(ctx, renderContext(interfaces.VisitorPerson, true), "front", "", nil)
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	if _, err := module.Dispatch(ctx, session, xtheme.EditorCommand{Command: editor.AddRow}); !errors.Is(err, xtheme.ErrEditorDisabled) {
		t.Fatalf("expected ErrEditorDisabled, got %v", err)
	}
}

func TestModuleHandlerServesPreview(t *testing.T) {
	module := newModule(t, nil)
	server := httptest.NewServer(module.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/xtheme/index/front")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `id="xt-ph-front"`) {
		t.Fatalf("expected placeholder wrapper, got %s", body)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := xtheme.DefaultConfig()
	cfg.Storage.Provider = "mongo"
	if _, err := xtheme.New(cfg); !errors.Is(err, xtheme.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}
