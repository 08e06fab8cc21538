package domain

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeConfiguration = "XTHEME_CONFIGURATION"
	TextCodeVersionState  = "XTHEME_VERSION_STATE"
	TextCodeValidation    = "XTHEME_VALIDATION"
)

var (
	// ErrNotDraft is the source of every VersionStateError.
	ErrNotDraft = errors.New("xtheme: configuration is not a draft")
	// ErrUnknownTheme is the source of ConfigurationErrors raised for unregistered themes.
	ErrUnknownTheme = errors.New("xtheme: theme is not registered")
)

// NewConfigurationError tags err as a ConfigurationError.
func NewConfigurationError(err error, message string) error {
	return tag(err, goerrors.CategoryNotFound, message, TextCodeConfiguration)
}

// NewVersionStateError tags err as a VersionStateError.
func NewVersionStateError(err error, message string) error {
	return tag(err, goerrors.CategoryConflict, message, TextCodeVersionState)
}

// NewValidationError tags err as a ValidationError.
func NewValidationError(err error, message string) error {
	return tag(err, goerrors.CategoryValidation, message, TextCodeValidation)
}

func IsConfigurationError(err error) bool {
	return hasTextCode(err, TextCodeConfiguration)
}

func IsVersionStateError(err error) bool {
	return hasTextCode(err, TextCodeVersionState)
}

func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeValidation) || goerrors.IsCategory(err, goerrors.CategoryValidation)
}

func tag(err error, category goerrors.Category, message, code string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

func hasTextCode(err error, code string) bool {
	var target *goerrors.Error
	if !goerrors.As(err, &target) {
		return false
	}
	return target.TextCode == code
}
