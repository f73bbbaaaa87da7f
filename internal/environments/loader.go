package environments

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const ManifestFile = "fal_project.yml"

type manifest struct {
	Environments []map[string]any `yaml:"environments"`
}

// Load parses <projectRoot>/fal_project.yml into named definitions. Either all
// declared environments are returned or none are.
func Load(fs afero.Fs, projectRoot string, opts Options) (map[string]Definition, error) {
	path := filepath.Join(projectRoot, ManifestFile)
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return nil, parseErrorf(ErrManifestMissing, "%s must exist to define environments", path)
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc manifest
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	environments := make(map[string]Definition, len(doc.Environments))
	for _, entry := range doc.Environments {
		name, err := requiredKey(entry, "name")
		if err != nil {
			return nil, err
		}
		if name == LocalName {
			return nil, parseErrorf(ErrReservedName, "Environment name conflicts with a reserved name: %s.", name)
		}

		kind, err := requiredKey(entry, "type")
		if err != nil {
			return nil, err
		}
		if _, ok := environments[name]; ok {
			return nil, parseErrorf(ErrDuplicateName, "Environment names must be unique.")
		}

		def, err := Create(name, kind, entry, opts)
		if err != nil {
			return nil, err
		}
		environments[name] = def
	}
	return environments, nil
}

func requiredKey(entry map[string]any, key string) (string, error) {
	v, ok := entry[key]
	if !ok || v == nil {
		return "", parseErrorf(ErrMissingKey, "Missing required key: %s", key)
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}
