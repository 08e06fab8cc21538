package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-xtheme/internal/domain"
)

type moveCellCommand struct {
	X, Y int
}

func (moveCellCommand) Type() string { return "xtheme.editor.move_cell" }

func (c moveCellCommand) Validate() error {
	if c.X < 0 || c.Y < 0 {
		return errors.New("negative coordinates")
	}
	return nil
}

func TestDispatcherRunsEachCommandOnceWithoutRetries(t *testing.T) {
	var attempts int
	handler := NewHandler(func(ctx context.Context, _ moveCellCommand) error {
		attempts++
		return domain.NewVersionStateError(domain.ErrNotDraft, "cannot edit the public version")
	}, WithTimeout[moveCellCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(0))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), moveCellCommand{X: 1, Y: 0})
	if err == nil {
		t.Fatal("expected dispatcher to surface the rejection")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestHandlerSkipsInvalidMessages(t *testing.T) {
	var attempts int
	handler := NewHandler(func(ctx context.Context, _ moveCellCommand) error {
		attempts++
		return nil
	})

	if err := handler.Execute(context.Background(), moveCellCommand{X: -1}); err == nil {
		t.Fatal("expected validation error")
	}
	if attempts != 0 {
		t.Fatalf("expected invalid message to skip execution, got %d attempts", attempts)
	}
}
