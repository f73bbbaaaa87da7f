package teleport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DataLocation maps lower-cased relation names to storage paths. It is shared
// by reference for the duration of one run and is not safe for concurrent use.
type DataLocation map[string]string

func (l DataLocation) String() string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("'%s': '%s'", k, l[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// LoadLocations reads a registry saved by SaveLocations. A missing file
// yields an empty registry. Keys are lower-cased; two spellings of one
// relation must agree on the path.
func LoadLocations(fs afero.Fs, path string) (DataLocation, error) {
	raw, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return DataLocation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}
	var stored map[string]string
	if err := yaml.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("parse locations %s: %w", path, err)
	}
	loc := make(DataLocation, len(stored))
	for relation, relationPath := range stored {
		key := strings.ToLower(relation)
		if prev, ok := loc[key]; ok && prev != relationPath {
			return nil, fmt.Errorf("locations %s: %s maps to both %q and %q", path, key, prev, relationPath)
		}
		loc[key] = relationPath
	}
	return loc, nil
}

func SaveLocations(fs afero.Fs, path string, loc DataLocation) error {
	raw, err := yaml.Marshal(map[string]string(loc))
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return afero.WriteFile(fs, path, raw, 0o644)
}
