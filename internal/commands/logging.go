package commands

import (
	"strings"

	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// CommandLogger returns the logger for commands issued by subsystem, named
// xtheme.commands.<subsystem>.
func CommandLogger(provider interfaces.LoggerProvider, subsystem string) interfaces.Logger {
	subsystem = strings.ToLower(strings.TrimSpace(subsystem))
	if subsystem == "" {
		subsystem = "default"
	}
	return logging.WithFields(
		logging.ModuleLogger(provider, "xtheme.commands."+subsystem),
		map[string]any{"subsystem": subsystem},
	)
}
