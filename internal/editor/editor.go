package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-xtheme/internal/commands"
	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/internal/plugins"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

var (
	ErrSessionRequired = errors.New("editor: session required")
	ErrUnknownPlugin   = errors.New("editor: plugin is not registered")
)

// Outcome reports what a dispatched command did.
type Outcome struct {
	Command string          `json:"command"`
	Changed bool            `json:"changed"`
	Status  domain.Status   `json:"status"`
	Layout  *layouts.Layout `json:"-"`
}

// Request pairs a command with the session it applies to. It is the message
// carried by the go-command handler and dispatcher.
type Request struct {
	Session *Session
	Command Command
	outcome *Outcome
}

// Type implements command.Message.
func (Request) Type() string { return commandMessageType }

// Validate implements command.Message.
func (r Request) Validate() error {
	if r.Session == nil {
		return ErrSessionRequired
	}
	return r.Command.Validate()
}

// Option configures the editor.
type Option func(*Editor)

// WithLogger sets the editor logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Editor) {
		e.logger = logging.Ensure(logger)
	}
}

// WithTimeout bounds a single command. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Editor) {
		e.timeout = timeout
	}
}

// Editor applies editor commands to sessions, persisting every change.
type Editor struct {
	plugins *plugins.Registry
	logger  interfaces.Logger
	timeout time.Duration
	handler *commands.Handler[Request]
}

// New returns an editor resolving plugins from registry.
func New(registry *plugins.Registry, opts ...Option) *Editor {
	e := &Editor{
		plugins: registry,
		logger:  logging.NoOp(),
		timeout: commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.handler = commands.NewHandler(e.execute,
		commands.WithLogger[Request](e.logger),
		commands.WithOperation[Request]("editor.dispatch"),
		commands.WithTimeout[Request](e.timeout),
		commands.WithMessageFields(func(r Request) map[string]any {
			fields := map[string]any{"editor_command": r.Command.Command}
			if r.Session != nil {
				fields["placeholder"] = r.Session.Placeholder
				fields["layout_key"] = r.Session.LayoutKey
				fields["view"] = r.Session.Config.Key().View
			}
			return fields
		}),
	)
	return e
}

// Handler exposes the go-command handler backing Dispatch.
func (e *Editor) Handler() command.Commander[Request] {
	return e.handler
}

// Subscribe registers the editor with the go-command dispatcher without
// retries. The returned function unsubscribes.
func (e *Editor) Subscribe() func() {
	sub := dispatcher.SubscribeCommand(e.handler, runner.WithMaxRetries(0))
	return sub.Unsubscribe
}

// Dispatch applies cmd to session. Structural commands persist the layout
// before returning; stale coordinates are no-ops reported with Changed false.
func (e *Editor) Dispatch(ctx context.Context, session *Session, cmd Command) (Outcome, error) {
	outcome := &Outcome{}
	if err := e.handler.Execute(ctx, Request{Session: session, Command: cmd, outcome: outcome}); err != nil {
		return Outcome{Command: cmd.Command}, err
	}
	return *outcome, nil
}

// Form returns the editor form of the selected cell's plugin.
func (e *Editor) Form(session *Session) (plugins.Form, bool) {
	cell := session.Cell()
	if cell.IsEmpty() {
		return plugins.Form{}, false
	}
	fields, ok := e.fields(cell)
	if !ok {
		return plugins.Form{}, false
	}
	return plugins.BuildForm(cell.Plugin, fields, cell.Config), true
}

func (e *Editor) execute(ctx context.Context, req Request) error {
	s := req.Session
	cmd := req.Command
	changed, err := e.apply(ctx, s, cmd)
	if err != nil {
		return err
	}
	if req.outcome != nil {
		*req.outcome = Outcome{
			Command: cmd.Command,
			Changed: changed,
			Status:  s.Config.Status(),
			Layout:  s.Layout,
		}
	}
	return nil
}

func (e *Editor) apply(ctx context.Context, s *Session, cmd Command) (bool, error) {
	switch cmd.Command {
	case Publish:
		persisted := s.Config.Persisted()
		if err := s.Config.Publish(ctx); err != nil {
			return false, err
		}
		return persisted, nil
	case Revert:
		persisted := s.Config.Persisted()
		if err := s.Config.Revert(ctx); err != nil {
			return false, err
		}
		return persisted, s.reload()
	}

	if !s.Config.IsDraft() {
		return false, domain.NewVersionStateError(domain.ErrNotDraft, "cannot edit in non-draft mode")
	}
	changed, err := e.mutate(s, cmd)
	if err != nil || !changed {
		return false, err
	}
	if err := s.Config.SavePlaceholderLayout(ctx, s.LayoutKey, s.Layout); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Editor) mutate(s *Session, cmd Command) (bool, error) {
	layout := s.Layout
	switch cmd.Command {
	case AddRow:
		var row *layouts.Row
		if cmd.Y == nil {
			row = layout.AppendRow()
		} else {
			row = layout.InsertRow(*cmd.Y)
		}
		if row == nil {
			return false, nil
		}
		row.Cells = append(row.Cells, layouts.NewCell())
		return true, nil
	case AddCell:
		cell, err := layout.AddCell(*cmd.Y)
		return cell != nil, err
	case DelRow:
		return layout.DeleteRow(*cmd.Y), nil
	case DelCell:
		return layout.DeleteCell(*cmd.X, *cmd.Y), nil
	case MoveRowToIndex:
		return layout.MoveRowToIndex(*cmd.FromY, *cmd.ToY), nil
	case MoveCellToPosition:
		return layout.MoveCellToPosition(*cmd.FromX, *cmd.FromY, *cmd.ToX, *cmd.ToY), nil
	case ChangePlugin:
		return e.changePlugin(s, cmd.Plugin)
	case SaveConfig:
		return e.saveConfig(s, cmd.Config)
	default:
		return false, domain.NewValidationError(fmt.Errorf("editor: unknown command %q", cmd.Command), "unknown command")
	}
}

// changePlugin sets or clears the plugin of the selected cell. The existing
// config is kept so values survive a plugin swap.
func (e *Editor) changePlugin(s *Session, plugin *string) (bool, error) {
	cell := s.Cell()
	if cell == nil {
		return false, nil
	}
	id := ""
	if plugin != nil {
		id = strings.ToLower(strings.TrimSpace(*plugin))
	}
	if id != "" && (e.plugins == nil || !e.plugins.Has(id)) {
		return false, domain.NewValidationError(ErrUnknownPlugin, fmt.Sprintf("plugin %q is not registered", id))
	}
	if cell.Plugin == id {
		return false, nil
	}
	cell.Plugin = id
	return true, nil
}

// saveConfig cleans submitted values with the selected plugin's fields and
// merges them into the cell config.
func (e *Editor) saveConfig(s *Session, submitted map[string]any) (bool, error) {
	cell := s.Cell()
	if cell.IsEmpty() {
		return false, nil
	}
	fields, ok := e.fields(cell)
	if !ok {
		return false, nil
	}
	cleaned, err := plugins.CleanForm(fields, submitted)
	if err != nil {
		return false, err
	}
	cell.Config = plugins.MergeConfig(cell.Config, cleaned)
	return true, nil
}

func (e *Editor) fields(cell *layouts.Cell) ([]plugins.Field, bool) {
	if e.plugins == nil {
		return nil, false
	}
	factory, ok := e.plugins.Resolve(cell.Plugin)
	if !ok {
		return nil, false
	}
	plugin, err := factory(cell.Config)
	if err != nil {
		e.logger.Warn("editor.plugin.instantiate_failed", "plugin", cell.Plugin, "error", err)
		return nil, false
	}
	configurable, ok := plugin.(plugins.Configurable)
	if !ok {
		return nil, false
	}
	return configurable.Fields(), true
}
