package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fal-labs/falrun/internal/environments"
)

type environmentView struct {
	Name        string         `yaml:"name"`
	Kind        string         `yaml:"kind"`
	Host        string         `yaml:"host"`
	MachineType string         `yaml:"machine_type"`
	Config      map[string]any `yaml:"config,omitempty"`
}

func viewOf(name string, def environments.Definition) environmentView {
	host := environments.HostLocal
	if def.Host != nil {
		host = def.Host.Kind()
	}
	return environmentView{
		Name:        name,
		Kind:        string(def.Kind),
		Host:        host,
		MachineType: def.MachineType,
		Config:      def.ConfigCopy(),
	}
}

func newEnvironmentsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "environments [name]",
		Aliases: []string{"env"},
		Example: "$ falrun environments pandas",
		Short:   "Show the environments declared in fal_project.yml",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var views []environmentView
			if len(args) == 1 {
				def, _, err := environments.Fetch(app.FS, app.cfg.Env.ProjectDir, args[0], app.envOptions())
				if err != nil {
					return err
				}
				views = append(views, viewOf(args[0], def))
			} else {
				defs, err := environments.Load(app.FS, app.cfg.Env.ProjectDir, app.envOptions())
				if err != nil {
					return &environments.LoadError{Cause: err}
				}
				views = append(views, viewOf(environments.LocalName, environments.LocalDefinition()))
				names := make([]string, 0, len(defs))
				for name := range defs {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					views = append(views, viewOf(name, defs[name]))
				}
			}
			out, err := yaml.Marshal(views)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
