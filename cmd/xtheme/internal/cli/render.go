package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-xtheme"
	"github.com/goliatone/go-xtheme/cmd/xtheme/internal/bootstrap"
	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

type contextFlags struct {
	tenant   string
	visitor  string
	kind     string
	groups   string
	editor   bool
	entities []string
}

func (f *contextFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tenant, "tenant", "default", "tenant identifier")
	cmd.Flags().StringVar(&f.visitor, "visitor", "", "visitor identifier (anonymous when empty)")
	cmd.Flags().StringVar(&f.kind, "kind", string(interfaces.VisitorPerson), "visitor kind: person or organization")
	cmd.Flags().StringVar(&f.groups, "groups", "", "comma separated visitor groups")
	cmd.Flags().BoolVar(&f.editor, "editor", false, "visitor may edit layouts")
	cmd.Flags().StringSliceVar(&f.entities, "entity", nil, "entity binding as kind=id (repeatable)")
}

func (f *contextFlags) build(view string) (*renderctx.Context, error) {
	var visitor interfaces.Visitor
	if id := strings.TrimSpace(f.visitor); id != "" {
		visitor = renderctx.StaticVisitor{
			ID:     id,
			Type:   interfaces.VisitorKind(strings.ToLower(strings.TrimSpace(f.kind))),
			Editor: f.editor,
			Groups: bootstrap.SplitList(f.groups),
		}
	}
	rc := renderctx.New(renderctx.StaticTenant(f.tenant), visitor, view)
	for _, binding := range f.entities {
		kind, id, ok := strings.Cut(binding, "=")
		kind, id = strings.TrimSpace(kind), strings.TrimSpace(id)
		if !ok || kind == "" || id == "" {
			return nil, fmt.Errorf("invalid entity %q, expected kind=id", binding)
		}
		rc = rc.WithEntity(kind, renderctx.StaticEntity{ID: id, Name: id})
	}
	return rc, nil
}

func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags       contextFlags
		edit        bool
		defaultPath string
	)

	cmd := &cobra.Command{
		Use:   "render VIEW PLACEHOLDER",
		Short: "Render a placeholder to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := flags.build(args[0])
			if err != nil {
				return err
			}
			rc.EditToggle = edit

			var fallback *layouts.Layout
			if defaultPath != "" {
				data, err := os.ReadFile(defaultPath)
				if err != nil {
					return fmt.Errorf("read default layout: %w", err)
				}
				if fallback, err = layouts.Import(data); err != nil {
					return err
				}
			}

			mod, err := c.module()
			if err != nil {
				return err
			}
			defer mod.Module.Close()

			ctx := xtheme.WithRequestCache(cmd.Context())
			out, err := mod.Module.RenderPlaceholder(ctx, rc, args[1], fallback)
			if err != nil {
				return err
			}
			c.printf("%s\n", out)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&edit, "edit", false, "render in edit mode (requires --editor)")
	cmd.Flags().StringVar(&defaultPath, "default", "", "path to a default layout JSON document")
	return cmd
}
