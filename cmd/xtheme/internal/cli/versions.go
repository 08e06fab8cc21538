package cli

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-xtheme"
	"github.com/goliatone/go-xtheme/internal/views"
)

func (c *CLI) versionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Inspect and restore stored view configurations",
	}
	cmd.AddCommand(c.versionsListCommand())
	cmd.AddCommand(c.versionsRestoreCommand())
	return cmd
}

type viewFlags struct {
	tenant string
	theme  string
}

func (f *viewFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tenant, "tenant", "default", "tenant identifier")
	cmd.Flags().StringVar(&f.theme, "theme", "", "theme identifier (defaults to the tenant's current theme)")
}

func (c *CLI) versionsListCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "list VIEW",
		Short: "List the stored versions of VIEW",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, err := c.module()
			if err != nil {
				return err
			}
			defer mod.Module.Close()

			key, err := resolveKey(cmd, mod.Module, flags, args[0])
			if err != nil {
				return err
			}
			versions, err := mod.Module.Views().ListVersions(cmd.Context(), key)
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				c.printf("no stored versions for %s\n", key)
				return nil
			}
			for _, version := range versions {
				c.printf("%s\t%s\t%s\t%d layouts\n", version.ID, version.Status, version.UpdatedAt.Format(time.RFC3339), len(version.LayoutKeys))
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func (c *CLI) versionsRestoreCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "restore VIEW VERSION",
		Short: "Copy a stored version into the draft of VIEW",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[1])
			if err != nil {
				return err
			}
			mod, err := c.module()
			if err != nil {
				return err
			}
			defer mod.Module.Close()

			key, err := resolveKey(cmd, mod.Module, flags, args[0])
			if err != nil {
				return err
			}
			draft, err := mod.Module.Views().RestoreVersion(cmd.Context(), key, id)
			if err != nil {
				return err
			}
			c.printf("restored %s into draft %s\n", id, draft.ID())
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

// resolveKey builds the view key, falling back to the tenant's current theme.
func resolveKey(cmd *cobra.Command, mod *xtheme.Module, flags viewFlags, view string) (views.Key, error) {
	theme := flags.theme
	if theme == "" {
		current, err := mod.Themes().GetCurrentTheme(cmd.Context(), flags.tenant)
		if err != nil {
			return views.Key{}, err
		}
		theme = current.ID
	}
	return views.Key{Tenant: flags.tenant, Theme: theme, View: view}.Normalize(), nil
}
