// Package cli wires the falrun commands.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fal-labs/falrun/internal/config"
	"github.com/fal-labs/falrun/internal/environments"
	"github.com/fal-labs/falrun/internal/model"
	"github.com/fal-labs/falrun/internal/platform/logging"
)

// App carries what the commands share. Models run by "falrun run" come from
// Catalog, which pkg/falrun fills for programs outside this module.
type App struct {
	FS      afero.Fs
	Catalog *model.Catalog
	Logger  *slog.Logger
	Stdout  io.Writer
	Stderr  io.Writer

	projectDir string
	cfg        config.Config
}

func NewRootCommand(app *App) *cobra.Command {
	if app.FS == nil {
		app.FS = afero.NewOsFs()
	}
	if app.Catalog == nil {
		app.Catalog = model.NewCatalog()
	}

	rootCmd := &cobra.Command{
		Use:           "falrun",
		Short:         "Run procedural models against a SQL project's relations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd.ErrOrStderr())
		},
	}
	if app.Stdout != nil {
		rootCmd.SetOut(app.Stdout)
	}
	if app.Stderr != nil {
		rootCmd.SetErr(app.Stderr)
	}
	rootCmd.PersistentFlags().StringVarP(&app.projectDir, "project-dir", "p", "",
		"project directory holding fal_project.yml (defaults to FAL_PROJECT_DIR or .)")

	rootCmd.AddCommand(newEnvironmentsCommand(app))
	rootCmd.AddCommand(newRequirementsCommand(app))
	rootCmd.AddCommand(newRunCommand(app))
	return rootCmd
}

func (a *App) load(stderr io.Writer) error {
	cfg, err := config.Load(a.FS, a.projectDir)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.Logger == nil {
		cfg.Logging.Output = stderr
		logger, err := logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		a.Logger = logger
	}
	return nil
}

func (a *App) envOptions() environments.Options {
	return environments.Options{MachineType: a.cfg.Env.MachineType}
}

// Execute runs the CLI with args, or os.Args when args is nil, and returns
// the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	cmd := NewRootCommand(app)
	if args != nil {
		cmd.SetArgs(args)
	}
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger := logging.OrDefault(app.Logger)
		logger.Error("falrun failed", "error", err)
		return 1
	}
	return 0
}
