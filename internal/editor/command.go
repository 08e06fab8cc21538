package editor

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const commandMessageType = "xtheme.editor.command"

// Command names accepted by Dispatch.
const (
	AddRow             = "add_row"
	AddCell            = "add_cell"
	DelRow             = "del_row"
	DelCell            = "del_cell"
	MoveRowToIndex     = "move_row_to_index"
	MoveCellToPosition = "move_cell_to_position"
	ChangePlugin       = "change_plugin"
	SaveConfig         = "save_config"
	Publish            = "publish"
	Revert             = "revert"
)

// CommandNames lists every accepted command.
var CommandNames = []string{
	AddRow, AddCell, DelRow, DelCell, MoveRowToIndex, MoveCellToPosition,
	ChangePlugin, SaveConfig, Publish, Revert,
}

// Command is one editor request. Coordinates are pointers so a zero index can
// be told apart from a missing one.
type Command struct {
	Command string         `json:"command"`
	Y       *int           `json:"y,omitempty"`
	X       *int           `json:"x,omitempty"`
	FromX   *int           `json:"from_x,omitempty"`
	FromY   *int           `json:"from_y,omitempty"`
	ToX     *int           `json:"to_x,omitempty"`
	ToY     *int           `json:"to_y,omitempty"`
	Plugin  *string        `json:"plugin,omitempty"`
	Config  map[string]any `json:"config,omitempty"`
}

// Type implements command.Message.
func (Command) Type() string { return commandMessageType }

// Validate checks the command name and the arguments it requires.
func (c Command) Validate() error {
	name := c.Command
	needs := func(names ...string) bool {
		for _, candidate := range names {
			if name == candidate {
				return true
			}
		}
		return false
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Command, validation.Required, validation.In(commandValues()...)),
		validation.Field(&c.Y, validation.When(needs(AddCell, DelRow, DelCell), validation.NotNil)),
		validation.Field(&c.X, validation.When(needs(DelCell), validation.NotNil)),
		validation.Field(&c.FromX, validation.When(needs(MoveCellToPosition), validation.NotNil)),
		validation.Field(&c.FromY, validation.When(needs(MoveRowToIndex, MoveCellToPosition), validation.NotNil)),
		validation.Field(&c.ToX, validation.When(needs(MoveCellToPosition), validation.NotNil)),
		validation.Field(&c.ToY, validation.When(needs(MoveRowToIndex, MoveCellToPosition), validation.NotNil)),
		validation.Field(&c.Config, validation.When(needs(SaveConfig), validation.NotNil)),
	)
}

func commandValues() []any {
	out := make([]any, 0, len(CommandNames))
	for _, name := range CommandNames {
		out = append(out, name)
	}
	return out
}

// Int returns a pointer to v, for building commands in code.
func Int(v int) *int { return &v }

// String returns a pointer to v, for building commands in code.
func String(v string) *string { return &v }

const configPrefix = "config."

// ParseValues decodes a key/value form body. Plugin configuration is read from
// "config.<field>" keys or from a JSON object under "config".
func ParseValues(values url.Values) (Command, error) {
	cmd := Command{Command: strings.TrimSpace(values.Get("command"))}
	errs := validation.Errors{}

	for key, target := range map[string]**int{
		"y":      &cmd.Y,
		"x":      &cmd.X,
		"from_x": &cmd.FromX,
		"from_y": &cmd.FromY,
		"to_x":   &cmd.ToX,
		"to_y":   &cmd.ToY,
	} {
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			errs[key] = validation.NewError("xtheme.editor.coordinate_invalid", "must be an integer")
			continue
		}
		*target = &parsed
	}

	if _, ok := values["plugin"]; ok {
		plugin := strings.TrimSpace(values.Get("plugin"))
		cmd.Plugin = &plugin
	}

	if raw := strings.TrimSpace(values.Get("config")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cmd.Config); err != nil {
			errs["config"] = validation.NewError("xtheme.editor.config_invalid", "must be a JSON object")
		}
	}
	for key, vals := range values {
		if !strings.HasPrefix(key, configPrefix) || len(vals) == 0 {
			continue
		}
		if cmd.Config == nil {
			cmd.Config = map[string]any{}
		}
		cmd.Config[strings.TrimPrefix(key, configPrefix)] = vals[0]
	}

	if len(errs) > 0 {
		return cmd, errs
	}
	return cmd, nil
}
