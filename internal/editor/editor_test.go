package editor_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/editor"
	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/plugins"
	"github.com/goliatone/go-xtheme/internal/views"
)

var testKey = views.Key{Tenant: "shop-1", Theme: "classic", View: "index"}

type harness struct {
	editor *editor.Editor
	views  views.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	registry := plugins.NewRegistry()
	if err := plugins.RegisterBuiltins(registry, plugins.BuiltinOptions{}); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	return &harness{
		editor: editor.New(registry),
		views:  views.NewService(views.NewMemoryRepository()),
	}
}

func (h *harness) session(t *testing.T, draft bool, opts ...editor.SessionOption) *editor.Session {
	t.Helper()
	vc, err := h.views.Load(context.Background(), testKey, draft)
	if err != nil {
		t.Fatalf("load view: %v", err)
	}
	session, err := editor.NewSession(vc, "front", opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func (h *harness) dispatch(t *testing.T, session *editor.Session, cmd editor.Command) editor.Outcome {
	t.Helper()
	outcome, err := h.editor.Dispatch(context.Background(), session, cmd)
	if err != nil {
		t.Fatalf("dispatch %s: %v", cmd.Command, err)
	}
	return outcome
}

func (h *harness) stored(t *testing.T) *layouts.Layout {
	t.Helper()
	vc, err := h.views.Load(context.Background(), testKey, true)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	layout, ok, err := vc.PlaceholderLayout("front")
	if err != nil || !ok {
		t.Fatalf("expected stored layout, ok=%v err=%v", ok, err)
	}
	return layout
}

func TestAddCellEnforcesRowLimit(t *testing.T) {
	h := newHarness(t)
	session := h.session(t, true)

	if outcome := h.dispatch(t, session, editor.Command{Command: editor.AddRow}); !outcome.Changed {
		t.Fatal("expected add_row to change the layout")
	}
	for range 3 {
		h.dispatch(t, session, editor.Command{Command: editor.AddCell, Y: editor.Int(0)})
	}

	_, err := h.editor.Dispatch(context.Background(), session, editor.Command{Command: editor.AddCell, Y: editor.Int(0)})
	if !domain.IsValidationError(err) || !errors.Is(err, layouts.ErrRowCellLimit) {
		t.Fatalf("expected row limit validation error, got %v", err)
	}
	if got := len(h.stored(t).GetRow(0).Cells); got != layouts.MaxCellsPerRow {
		t.Fatalf("expected %d stored cells, got %d", layouts.MaxCellsPerRow, got)
	}
}

func TestStaleCoordinatesAreNoOps(t *testing.T) {
	h := newHarness(t)
	session := h.session(t, true)

	for _, cmd := range []editor.Command{
		{Command: editor.AddCell, Y: editor.Int(3)},
		{Command: editor.DelRow, Y: editor.Int(0)},
		{Command: editor.DelCell, X: editor.Int(1), Y: editor.Int(1)},
		{Command: editor.MoveRowToIndex, FromY: editor.Int(0), ToY: editor.Int(2)},
		{Command: editor.ChangePlugin, Plugin: editor.String("text")},
		{Command: editor.SaveConfig, Config: map[string]any{"text": "x"}},
		{Command: editor.AddRow, Y: editor.Int(5)},
	} {
		if outcome := h.dispatch(t, session, cmd); outcome.Changed {
			t.Fatalf("expected %s to be a no-op", cmd.Command)
		}
	}
	if session.Config.Persisted() {
		t.Fatal("expected no-ops to leave storage untouched")
	}
}

func TestMoveCommandsPersist(t *testing.T) {
	h := newHarness(t)
	session := h.session(t, true)

	h.dispatch(t, session, editor.Command{Command: editor.AddRow})
	h.dispatch(t, session, editor.Command{Command: editor.AddRow})
	session.Layout.GetCell(0, 0).Plugin = "text"
	session.Layout.GetCell(0, 1).Plugin = "html"

	h.dispatch(t, session, editor.Command{Command: editor.MoveRowToIndex, FromY: editor.Int(1), ToY: editor.Int(0)})
	if got := h.stored(t).GetCell(0, 0).Plugin; got != "html" {
		t.Fatalf("expected rows to swap, got %q first", got)
	}

	h.dispatch(t, session, editor.Command{Command: editor.MoveCellToPosition, FromX: editor.Int(0), FromY: editor.Int(0), ToX: editor.Int(1), ToY: editor.Int(1)})
	stored := h.stored(t)
	if stored.RowCount() != 1 || len(stored.GetRow(0).Cells) != 2 || stored.GetCell(1, 0).Plugin != "html" {
		t.Fatalf("expected emptied origin row to be removed, got %#v", stored.Serialize())
	}
}

func TestChangePluginAndSaveConfig(t *testing.T) {
	h := newHarness(t)
	seed := h.session(t, true)
	h.dispatch(t, seed, editor.Command{Command: editor.AddRow})

	session := h.session(t, true, editor.WithSelection(0, 0))
	if outcome := h.dispatch(t, session, editor.Command{Command: editor.ChangePlugin, Plugin: editor.String(" TEXT ")}); !outcome.Changed {
		t.Fatal("expected plugin change")
	}
	if _, err := h.editor.Dispatch(context.Background(), session, editor.Command{Command: editor.ChangePlugin, Plugin: editor.String("missing")}); !domain.IsValidationError(err) {
		t.Fatalf("expected unknown plugin to fail validation, got %v", err)
	}

	session.Layout.GetCell(0, 0).Config["legacy"] = "keep"
	h.dispatch(t, session, editor.Command{Command: editor.SaveConfig, Config: map[string]any{"text": "Hello", "tag": "h2"}})
	cell := h.stored(t).GetCell(0, 0)
	if cell.Plugin != "text" || cell.Config["text"] != "Hello" || cell.Config["tag"] != "h2" || cell.Config["legacy"] != "keep" {
		t.Fatalf("expected merged config, got %#v", cell)
	}

	_, err := h.editor.Dispatch(context.Background(), session, editor.Command{Command: editor.SaveConfig, Config: map[string]any{"text": ""}})
	var errs validation.Errors
	if !domain.IsValidationError(err) || !errors.As(err, &errs) || errs["text"] == nil {
		t.Fatalf("expected field validation errors, got %v", err)
	}

	form, ok := h.editor.Form(session)
	if !ok || form.Plugin != "text" || len(form.Fields) != 2 {
		t.Fatalf("unexpected form %#v", form)
	}

	h.dispatch(t, session, editor.Command{Command: editor.ChangePlugin})
	if cell := h.stored(t).GetCell(0, 0); cell.Plugin != "" {
		t.Fatalf("expected plugin to be cleared, got %q", cell.Plugin)
	}
}

func TestPublishAndRevert(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.session(t, true)

	h.dispatch(t, session, editor.Command{Command: editor.AddRow})
	if outcome := h.dispatch(t, session, editor.Command{Command: editor.Publish}); outcome.Status != domain.StatusPublic {
		t.Fatalf("expected public status, got %s", outcome.Status)
	}
	if _, err := h.editor.Dispatch(ctx, session, editor.Command{Command: editor.AddRow}); !domain.IsVersionStateError(err) {
		t.Fatalf("expected version state error after publish, got %v", err)
	}

	draft := h.session(t, true)
	h.dispatch(t, draft, editor.Command{Command: editor.AddRow})
	if draft.Layout.RowCount() != 2 {
		t.Fatalf("expected draft to build on the public layout, got %d rows", draft.Layout.RowCount())
	}
	h.dispatch(t, draft, editor.Command{Command: editor.Revert})
	if draft.Layout.RowCount() != 1 || draft.Config.Persisted() {
		t.Fatalf("expected revert to restore the public layout, got %d rows", draft.Layout.RowCount())
	}

	public := h.session(t, false)
	for _, name := range []string{editor.Publish, editor.Revert, editor.AddRow} {
		if _, err := h.editor.Dispatch(ctx, public, editor.Command{Command: name}); !domain.IsVersionStateError(err) {
			t.Fatalf("expected %s on public data to fail, got %v", name, err)
		}
	}
}

func TestCommandValidation(t *testing.T) {
	h := newHarness(t)
	session := h.session(t, true)

	_, err := h.editor.Dispatch(context.Background(), session, editor.Command{Command: editor.AddCell})
	var errs validation.Errors
	if !domain.IsValidationError(err) || !errors.As(err, &errs) || errs["y"] == nil {
		t.Fatalf("expected missing y to fail validation, got %v", err)
	}
	if _, err := h.editor.Dispatch(context.Background(), session, editor.Command{Command: "explode"}); !domain.IsValidationError(err) {
		t.Fatalf("expected unknown command to fail validation, got %v", err)
	}
	if _, err := h.editor.Dispatch(context.Background(), nil, editor.Command{Command: editor.AddRow}); !domain.IsValidationError(err) {
		t.Fatalf("expected missing session to fail validation, got %v", err)
	}
}

func TestParseValues(t *testing.T) {
	cmd, err := editor.ParseValues(url.Values{
		"command":     {"move_cell_to_position"},
		"from_x":      {"0"},
		"from_y":      {"1"},
		"to_x":        {"2"},
		"to_y":        {"0"},
		"config.text": {"Hi"},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *cmd.FromY != 1 || *cmd.ToX != 2 || cmd.Config["text"] != "Hi" || cmd.Y != nil {
		t.Fatalf("unexpected command %#v", cmd)
	}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if _, err := editor.ParseValues(url.Values{"command": {"add_cell"}, "y": {"first"}}); err == nil {
		t.Fatal("expected non-numeric coordinate to fail")
	}
}

func TestDispatchThroughCommandDispatcher(t *testing.T) {
	h := newHarness(t)
	unsubscribe := h.editor.Subscribe()
	t.Cleanup(unsubscribe)

	session := h.session(t, true)
	if err := dispatcher.Dispatch(context.Background(), editor.Request{Session: session, Command: editor.Command{Command: editor.AddRow}}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if h.stored(t).RowCount() != 1 {
		t.Fatal("expected dispatched command to persist")
	}
}
