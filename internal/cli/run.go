package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fal-labs/falrun/internal/adapter"
	"github.com/fal-labs/falrun/internal/config"
	"github.com/fal-labs/falrun/internal/environments"
	"github.com/fal-labs/falrun/internal/platform/runid"
	"github.com/fal-labs/falrun/internal/runner"
	"github.com/fal-labs/falrun/internal/teleport"
)

// LocationsFile records teleported relations between runs.
const LocationsFile = ".fal/locations.yml"

func newRunCommand(app *App) *cobra.Command {
	var (
		adapterType string
		envName     string
		target      string
		debug       bool
	)
	cmd := &cobra.Command{
		Use:     "run [model]",
		Example: "$ falrun run orders_summary --environment pandas",
		Short:   "Run a registered model",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			code, ok := app.Catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("model %q is not registered (known: %v)", args[0], app.Catalog.Names())
			}
			if envName == "" {
				envName = app.cfg.Env.Environment
			}
			env, _, err := environments.Fetch(app.FS, app.cfg.Env.ProjectDir, envName, app.envOptions())
			if err != nil {
				return err
			}
			rf, cfg, err := config.LoadRuntime(app.FS, app.cfg.RuntimePath(), app.cfg.Env.ProjectDir)
			if err != nil {
				return err
			}

			id := runid.New()
			ctx = runid.WithRunID(ctx, id)
			r := runner.New(adapter.NewReconstructor(app.Logger), teleport.NewURLStorage(app.FS), app.Logger)
			started := time.Now()

			var result any
			if app.cfg.Teleport != nil {
				locPath := filepath.Join(app.cfg.Env.ProjectDir, LocationsFile)
				locations, err := teleport.LoadLocations(app.FS, locPath)
				if err != nil {
					return err
				}
				result, err = r.RunInEnvironmentWithTeleport(ctx, env, code, *app.cfg.Teleport, locations, cfg)
				if err != nil {
					return err
				}
				if err := teleport.SaveLocations(app.FS, locPath, locations); err != nil {
					return err
				}
			} else {
				flags := rf.Flags
				if target != "" {
					flags.Target = target
				}
				flags.Debug = flags.Debug || debug
				result, err = r.RunInEnvironmentWithAdapter(ctx, env, code, flags, cfg, rf.Manifest, rf.Macros, adapterType)
				if err != nil {
					return err
				}
			}

			app.Logger.InfoContext(ctx, "model finished",
				"model", code.Name,
				"run_id", id,
				"took", strings.TrimSpace(humanize.RelTime(started, time.Now(), "", "")),
			)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%v\n", result)
			return err
		},
	}
	cmd.Flags().StringVar(&adapterType, "adapter-type", "", "adapter type the model was compiled for")
	cmd.Flags().StringVarP(&envName, "environment", "e", "", "environment to run in (defaults to FAL_ENVIRONMENT)")
	cmd.Flags().StringVar(&target, "target", "", "profile target override")
	cmd.Flags().BoolVar(&debug, "debug", false, "log every statement sent to the database")
	return cmd
}
