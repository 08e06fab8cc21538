package interfaces

import "context"

// Logger is the leveled, key/value logger used by every xtheme package.
// Method set matches go-logger's glog.Logger apart from the return type of
// WithContext.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	// WithContext returns a logger that includes the request fields carried
	// by ctx (tenant, view, request id) where the implementation supports it.
	WithContext(ctx context.Context) Logger
}

// FieldsLogger is implemented by loggers that can bind fields to every
// subsequent entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// LoggerProvider returns the logger for a module name such as
// "xtheme.rendering".
type LoggerProvider interface {
	GetLogger(name string) Logger
}
