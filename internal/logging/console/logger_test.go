package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/internal/logging/console"
)

func testOptions(buf *bytes.Buffer, level console.Level) console.Options {
	return console.Options{
		Writer:   buf,
		TimeFunc: func() time.Time { return time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC) },
		MinLevel: &level,
	}
}

func TestConsoleLoggerLineFormat(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(testOptions(&buf, console.LevelDebug))

	logger := logging.ModuleLogger(provider, "xtheme.views")
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"tenant": "shop-1"})
	logger.WithContext(ctx).Info("views.published",
		"view", "index",
		"published_at", time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
		"layout_keys", 3,
	)

	got := strings.TrimSpace(buf.String())
	want := "2024-03-14T15:09:26.535Z INF [xtheme.views] views.published layout_keys=3 published_at=2024-03-15T08:00:00Z tenant=shop-1 view=index"
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerQuotesAndDanglingArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(testOptions(&buf, console.LevelDebug))

	provider.GetLogger("xtheme.editor").Warn("xtheme.command.rejected", "error", errors.New("not a draft"), "placeholder")

	got := strings.TrimSpace(buf.String())
	if !strings.Contains(got, `error="not a draft"`) || !strings.Contains(got, "!extra=placeholder") {
		t.Fatalf("unexpected entry %s", got)
	}
	if !strings.Contains(got, " WRN [xtheme.editor] ") {
		t.Fatalf("expected level and name, got %s", got)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(testOptions(&buf, console.LevelInfo))

	logger := provider.GetLogger("xtheme.rendering")
	logger.Debug("rendering.placeholder.rendered")
	logger.Error("rendering.placeholder.failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "rendering.placeholder.failed") {
		t.Fatalf("expected only the error entry, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"TRACE":   console.LevelTrace,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
		"":        console.LevelInfo,
		"bogus":   console.LevelInfo,
	}
	for input, want := range cases {
		if got := console.ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
