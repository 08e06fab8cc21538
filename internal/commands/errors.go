package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-xtheme/internal/domain"
)

const (
	codeCommandInvalid  = "XTHEME_COMMAND_INVALID"
	codeCommandCanceled = "XTHEME_COMMAND_CANCELED"
	codeCommandTimeout  = "XTHEME_COMMAND_TIMEOUT"
	codeCommandFailed   = "XTHEME_COMMAND_FAILED"
)

// classify maps an execution error onto an Outcome. Domain errors raised by
// the editor (editing a published version, unknown plugins, missing views)
// count as rejections rather than failures.
func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeApplied
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeAborted
	case domain.IsVersionStateError(err), domain.IsConfigurationError(err), domain.IsValidationError(err):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

// tagError attaches a go-errors category and text code to err unless it
// already carries one.
func tagError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command cancelled").
			WithTextCode(codeCommandCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command timed out").
			WithTextCode(codeCommandTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").
			WithTextCode(codeCommandFailed)
	}
}

func invalidMessageError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command").
		WithTextCode(codeCommandInvalid)
}
