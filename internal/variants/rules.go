package variants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

var (
	ErrFlavorIdentifierRequired = errors.New("variants: flavor identifier required")
	ErrExpressionRequired       = errors.New("variants: expression required")
	ErrGroupRequired            = errors.New("variants: group required")
)

// GroupFlavor applies to visitors that belong to a contact group.
type GroupFlavor struct {
	id    string
	name  string
	group string
}

// NewGroupFlavor binds a flavor to membership of group. The identifier is
// derived from the group name.
func NewGroupFlavor(group, name string) (GroupFlavor, error) {
	group = strings.TrimSpace(group)
	if group == "" {
		return GroupFlavor{}, ErrGroupRequired
	}
	id, err := flavorID("group-" + group)
	if err != nil {
		return GroupFlavor{}, err
	}
	if name == "" {
		name = "Group " + group
	}
	return GroupFlavor{id: id, name: name, group: group}, nil
}

func (f GroupFlavor) Identifier() string { return f.id }

func (f GroupFlavor) Name() string { return f.name }

func (f GroupFlavor) Group() string { return f.group }

func (f GroupFlavor) IsValidContext(ctx context.Context, rc *renderctx.Context) bool {
	if rc == nil || rc.Visitor == nil {
		return false
	}
	ok, err := rc.Visitor.InGroup(ctx, f.group)
	return err == nil && ok
}

func (f GroupFlavor) HelpText(*renderctx.Context) string {
	return fmt.Sprintf("This layout is shown to members of the %q group.", f.group)
}

func (f GroupFlavor) LayoutDataKey(placeholder string, _ *renderctx.Context) string {
	return placeholder + "_" + f.id
}

// ExpressionFlavor applies when a boolean expr-lang expression holds for the
// render context. The environment is renderctx.Context.Env plus a top-level
// in_group(name) helper.
type ExpressionFlavor struct {
	id         string
	name       string
	help       string
	expression string
	program    *exprvm.Program
	logger     interfaces.Logger
}

// ExpressionDefinition declares an operator-defined flavor.
type ExpressionDefinition struct {
	ID         string `json:"id" toml:"id"`
	Name       string `json:"name" toml:"name"`
	HelpText   string `json:"help_text" toml:"help_text"`
	Expression string `json:"expression" toml:"expression"`
}

// NewExpressionFlavor compiles def. Compilation errors are returned so bad
// definitions fail at start-up.
func NewExpressionFlavor(def ExpressionDefinition, logger interfaces.Logger) (*ExpressionFlavor, error) {
	id, err := flavorID(def.ID)
	if err != nil {
		return nil, err
	}
	expression := strings.TrimSpace(def.Expression)
	if expression == "" {
		return nil, ErrExpressionRequired
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(sampleEnv()),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("variants: compile flavor %q: %w", id, err)
	}
	name := def.Name
	if name == "" {
		name = id
	}
	flavor := &ExpressionFlavor{
		id:         id,
		name:       name,
		help:       def.HelpText,
		expression: expression,
		program:    program,
		logger:     logging.Ensure(logger),
	}
	return flavor, nil
}

func (f *ExpressionFlavor) Identifier() string { return f.id }

func (f *ExpressionFlavor) Name() string { return f.name }

func (f *ExpressionFlavor) Expression() string { return f.expression }

// IsValidContext treats evaluation errors and non-boolean results as false.
func (f *ExpressionFlavor) IsValidContext(ctx context.Context, rc *renderctx.Context) bool {
	result, err := exprlang.Run(f.program, environment(ctx, rc))
	if err != nil {
		f.logger.Warn("variants.expression.failed", "flavor", f.id, "error", err)
		return false
	}
	matched, ok := result.(bool)
	return ok && matched
}

func (f *ExpressionFlavor) HelpText(*renderctx.Context) string {
	if f.help != "" {
		return f.help
	}
	return fmt.Sprintf("This layout is shown when %s.", f.expression)
}

func (f *ExpressionFlavor) LayoutDataKey(placeholder string, _ *renderctx.Context) string {
	return placeholder + "_" + f.id
}

func environment(ctx context.Context, rc *renderctx.Context) map[string]any {
	env := rc.Env(ctx)
	visitor, _ := env["visitor"].(map[string]any)
	inGroup, _ := visitor["in_group"].(func(string) bool)
	if inGroup == nil {
		inGroup = func(string) bool { return false }
	}
	env["in_group"] = inGroup
	return env
}

func sampleEnv() map[string]any {
	return environment(context.Background(), renderctx.New(nil, nil, ""))
}

func flavorID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrFlavorIdentifierRequired
	}
	id, err := slug.Normalize(input)
	if err != nil {
		return "", fmt.Errorf("variants: normalize flavor identifier %q: %w", input, err)
	}
	if id == "" {
		return "", ErrFlavorIdentifierRequired
	}
	return id, nil
}
