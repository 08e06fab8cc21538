package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

const (
	rootModule      = "xtheme"
	themesModule    = "xtheme.themes"
	viewsModule     = "xtheme.views"
	pluginsModule   = "xtheme.plugins"
	renderingModule = "xtheme.rendering"
	httpModule      = "xtheme.http"
)

const (
	fieldTenant      = "tenant"
	fieldTheme       = "theme"
	fieldView        = "view"
	fieldPlaceholder = "placeholder"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields a
// no-op logger. The module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

func ThemesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, themesModule)
}

func ViewsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, viewsModule)
}

func PluginsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pluginsModule)
}

func RenderingLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderingModule)
}

func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithViewContext annotates logger with the (tenant, theme, view, placeholder)
// identity of a layout operation. Empty values are skipped.
func WithViewContext(logger interfaces.Logger, tenant, theme, view, placeholder string) interfaces.Logger {
	fields := map[string]any{}
	add := func(key, value string) {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			fields[key] = trimmed
		}
	}
	add(fieldTenant, tenant)
	add(fieldTheme, theme)
	add(fieldView, view)
	add(fieldPlaceholder, placeholder)
	return WithFields(logger, fields)
}

// WithFields returns logger with fields attached, or logger itself when it
// cannot carry fields.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return logger
	}
	if fl, ok := logger.(interfaces.FieldsLogger); ok {
		return fl.WithFields(maps.Clone(fields))
	}
	return logger
}

// Ensure substitutes NoOp for a nil logger.
func Ensure(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
