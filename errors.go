package xtheme

import "errors"

// ErrEditorDisabled is returned by Dispatch when the editor feature is off.
var ErrEditorDisabled = errors.New("xtheme: editor feature disabled")
