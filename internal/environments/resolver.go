package environments

import (
	"fmt"

	"github.com/spf13/afero"
)

// Fetch returns the definition for name and whether it is the implicit local
// environment. Resolving "local" never touches fs.
func Fetch(fs afero.Fs, projectRoot, name string, opts Options) (Definition, bool, error) {
	if name == LocalName {
		def := LocalDefinition()
		def.MachineType = opts.machineType()
		return def, true, nil
	}

	environments, err := Load(fs, projectRoot, opts)
	if err != nil {
		return Definition{}, false, &LoadError{Cause: err}
	}

	def, ok := environments[name]
	if !ok {
		return Definition{}, false, fmt.Errorf("%w: Environment '%s' was used but not defined in %s",
			ErrEnvironmentNotDefined, name, ManifestFile)
	}
	return def, false, nil
}
