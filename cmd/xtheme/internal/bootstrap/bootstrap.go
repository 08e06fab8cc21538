package bootstrap

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/goliatone/go-xtheme"
	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/internal/logging/console"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// Options captures configuration for CLI bootstraps.
type Options struct {
	ConfigPath string
	Verbose    bool
	LogWriter  io.Writer
}

// Module wraps the xtheme module and the CLI logger.
type Module struct {
	Module *xtheme.Module
	Logger interfaces.Logger
}

// LoadConfig decodes a TOML file over the default configuration. An empty
// path returns the defaults.
func LoadConfig(path string) (xtheme.Config, error) {
	cfg := xtheme.DefaultConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return cfg, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// BuildModule loads the configuration and constructs the module. Verbose
// output switches the console logger to debug.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	var moduleOpts []xtheme.Option
	if opts.LogWriter != nil && !cfg.Features.Logger {
		level := console.LevelInfo
		if opts.Verbose {
			level = console.LevelDebug
		}
		moduleOpts = append(moduleOpts, xtheme.WithLoggerProvider(console.NewProvider(console.Options{
			Writer:   opts.LogWriter,
			MinLevel: &level,
		})))
	}

	module, err := xtheme.New(cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise xtheme module: %w", err)
	}

	return &Module{
		Module: module,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "xtheme.cli"),
	}, nil
}

// SplitList parses a comma separated list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
