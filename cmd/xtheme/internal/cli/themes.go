package cli

import (
	"github.com/spf13/cobra"
)

func (c *CLI) themesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List and activate themes",
	}
	cmd.AddCommand(c.themesListCommand())
	cmd.AddCommand(c.themesActivateCommand())
	return cmd
}

func (c *CLI) themesListCommand() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered themes, marking the tenant's current theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, err := c.module()
			if err != nil {
				return err
			}
			defer mod.Module.Close()

			svc := mod.Module.Themes()
			current, err := svc.GetCurrentTheme(cmd.Context(), tenant)
			if err != nil {
				return err
			}
			for _, theme := range svc.Registry().List() {
				marker := " "
				if theme.ID == current.ID {
					marker = "*"
				}
				c.printf("%s %s\t%s\n", marker, theme.ID, theme.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "default", "tenant identifier")
	return cmd
}

func (c *CLI) themesActivateCommand() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "activate THEME",
		Short: "Make THEME the tenant's current theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, err := c.module()
			if err != nil {
				return err
			}
			defer mod.Module.Close()

			theme, err := mod.Module.Themes().SetCurrentTheme(cmd.Context(), args[0], tenant)
			if err != nil {
				return err
			}
			mod.Logger.Info("xtheme.cli.theme_activated", "theme", theme.ID, "tenant", tenant)
			c.printf("activated %s for %s\n", theme.ID, tenant)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "default", "tenant identifier")
	return cmd
}
