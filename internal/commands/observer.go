package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// Outcome is the result class of one command execution.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeRejected Outcome = "rejected"
	OutcomeAborted  Outcome = "aborted"
	OutcomeFailed   Outcome = "failed"
)

// Report describes a finished command.
type Report struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Err       error
	Outcome   Outcome
}

// Observer is called once per executed command.
type Observer[T command.Message] func(ctx context.Context, msg T, report Report)

// LogObserver writes reports to logger. Rejections are logged at warn level
// since they are caused by the caller, everything else that did not apply is
// an error.
func LogObserver[T command.Message](logger interfaces.Logger) Observer[T] {
	logger = logging.Ensure(logger)
	return func(_ context.Context, _ T, report Report) {
		entry := logging.WithFields(logger, report.Fields)
		args := []any{"duration_ms", report.Duration.Milliseconds(), "outcome", string(report.Outcome)}
		switch report.Outcome {
		case OutcomeApplied:
			entry.Info("xtheme.command.applied", args...)
		case OutcomeRejected:
			entry.Warn("xtheme.command.rejected", append(args, "error", report.Err)...)
		default:
			entry.Error("xtheme.command.failed", append(args, "error", report.Err)...)
		}
	}
}
