package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fal-labs/falrun/internal/platform/env"
	"github.com/fal-labs/falrun/internal/requirements"
)

func newRequirementsCommand(app *App) *cobra.Command {
	var (
		inventory string
		teleport  bool
		remote    bool
	)
	cmd := &cobra.Command{
		Use:     "requirements [adapter-type]",
		Example: "$ falrun requirements postgres --teleport",
		Short:   "Print the pip requirements of the adapter environment",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if inventory == "" {
				inventory = app.cfg.Env.Inventory
			}
			if inventory == "" {
				return errors.New("an inventory file is required (--inventory or FAL_INVENTORY)")
			}
			inv, err := requirements.LoadInventory(app.FS, inventory)
			if err != nil {
				return err
			}
			installed := env.List("FAL_INSTALLED_ADAPTERS", inv.InstalledAdapters())
			d := requirements.NewDescriber(inv, installed, requirements.Options{
				FS:        app.FS,
				SourceDir: app.cfg.Env.SourceDir,
				Logger:    app.Logger,
			})
			deps, err := d.PipDependencies(args[0], teleport || app.cfg.Teleport != nil, remote)
			if err != nil {
				return err
			}
			for _, dep := range deps {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), dep); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inventory, "inventory", "", "inventory YAML listing installed packages")
	cmd.Flags().BoolVar(&teleport, "teleport", false, "include the teleport extra")
	cmd.Flags().BoolVar(&remote, "remote", false, "describe a remote environment")
	return cmd
}
