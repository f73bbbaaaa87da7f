package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/fal-labs/falrun/internal/adapter"
)

// RuntimeFile is the on-disk form of everything the CLI needs to rebuild an
// adapter. A file declaring sql_adapter_credentials describes a composite
// adapter.
type RuntimeFile struct {
	ProjectName           string                `yaml:"project_name"`
	ProjectRoot           string                `yaml:"project_root,omitempty"`
	Vars                  map[string]any        `yaml:"vars,omitempty"`
	Credentials           adapter.Credentials   `yaml:"credentials"`
	SQLAdapterCredentials *adapter.Credentials  `yaml:"sql_adapter_credentials,omitempty"`
	Flags                 adapter.Flags         `yaml:"flags,omitempty"`
	Manifest              adapter.Manifest      `yaml:"manifest,omitempty"`
	Macros                adapter.MacroManifest `yaml:"macros,omitempty"`
}

// LoadRuntime reads the runtime file at path. Relative project roots and
// sqlite paths are resolved against projectDir.
func LoadRuntime(fs afero.Fs, path, projectDir string) (RuntimeFile, adapter.RuntimeConfig, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return RuntimeFile{}, adapter.RuntimeConfig{}, fmt.Errorf("read runtime config: %w", err)
	}
	var rf RuntimeFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return RuntimeFile{}, adapter.RuntimeConfig{}, fmt.Errorf("parse runtime config %s: %w", path, err)
	}

	root := rf.ProjectRoot
	switch {
	case strings.TrimSpace(root) == "":
		root = projectDir
	case !filepath.IsAbs(root):
		root = filepath.Join(projectDir, root)
	}
	rf.Credentials.Path = resolvePath(root, rf.Credentials.Path)

	var cfg adapter.RuntimeConfig
	if rf.SQLAdapterCredentials != nil {
		sql := *rf.SQLAdapterCredentials
		sql.Path = resolvePath(root, sql.Path)
		cfg = adapter.NewCompositeConfig(rf.ProjectName, root, rf.Credentials, sql)
	} else {
		cfg = adapter.NewDirectConfig(rf.ProjectName, root, rf.Credentials)
	}
	for k, v := range rf.Vars {
		cfg.Vars[k] = v
	}
	if err := cfg.Validate(); err != nil {
		return RuntimeFile{}, adapter.RuntimeConfig{}, fmt.Errorf("runtime config %s: %w", path, err)
	}
	return rf, cfg, nil
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
