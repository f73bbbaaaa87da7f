package adapter

import (
	"fmt"
	"maps"
	"path/filepath"
	"strings"
)

// ScriptsPathVar names the project var holding the scripts directory,
// relative to the project root.
const ScriptsPathVar = "fal-scripts-path"

// Credentials describe one database connection as declared in a profile.
type Credentials struct {
	Type     string `json:"type" yaml:"type"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Schema   string `json:"schema,omitempty" yaml:"schema,omitempty"`
	SSLMode  string `json:"sslmode,omitempty" yaml:"sslmode,omitempty"`
	// DSN overrides the individual connection fields when set.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	// Path is the database file for file-backed adapters.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

func (c Credentials) validate(prefix string, issues *ValidationError) {
	if strings.TrimSpace(c.Type) == "" {
		issues.Add(prefix + ".type is required")
	}
	if c.Port < 0 {
		issues.Add(prefix + ".port must be >= 0")
	}
}

// Encapsulation says whether the configured adapter talks to the database
// itself or wraps an SQL adapter. It is fixed when the config is built.
type Encapsulation string

const (
	Direct    Encapsulation = "direct"
	Composite Encapsulation = "composite"
)

type RuntimeConfig struct {
	ProjectName   string         `json:"project_name" yaml:"project_name"`
	ProjectRoot   string         `json:"project_root" yaml:"project_root"`
	Vars          map[string]any `json:"vars,omitempty" yaml:"vars,omitempty"`
	Encapsulation Encapsulation  `json:"encapsulation,omitempty" yaml:"encapsulation,omitempty"`
	// Credentials is the primary adapter. For Composite configs this is the
	// python adapter and SQLAdapterCredentials holds the wrapped database.
	Credentials           Credentials  `json:"credentials" yaml:"credentials"`
	SQLAdapterCredentials *Credentials `json:"sql_adapter_credentials,omitempty" yaml:"sql_adapter_credentials,omitempty"`
	// PythonAdapterCredentials is only set on configs returned by DBAdapterConfig.
	PythonAdapterCredentials *Credentials `json:"python_adapter_credentials,omitempty" yaml:"python_adapter_credentials,omitempty"`
}

func NewDirectConfig(projectName, projectRoot string, creds Credentials) RuntimeConfig {
	return RuntimeConfig{
		ProjectName:   projectName,
		ProjectRoot:   projectRoot,
		Vars:          map[string]any{},
		Encapsulation: Direct,
		Credentials:   creds,
	}
}

func NewCompositeConfig(projectName, projectRoot string, python, sql Credentials) RuntimeConfig {
	return RuntimeConfig{
		ProjectName:           projectName,
		ProjectRoot:           projectRoot,
		Vars:                  map[string]any{},
		Encapsulation:         Composite,
		Credentials:           python,
		SQLAdapterCredentials: &sql,
	}
}

func (c RuntimeConfig) encapsulation() Encapsulation {
	if c.Encapsulation == "" {
		return Direct
	}
	return c.Encapsulation
}

func (c RuntimeConfig) Validate() error {
	issues := &ValidationError{}
	if strings.TrimSpace(c.ProjectRoot) == "" {
		issues.Add("project_root is required")
	}
	c.Credentials.validate("credentials", issues)

	switch c.encapsulation() {
	case Direct:
		if c.SQLAdapterCredentials != nil {
			issues.Add("sql_adapter_credentials requires encapsulation composite")
		}
	case Composite:
		if c.SQLAdapterCredentials == nil {
			issues.Add("sql_adapter_credentials is required for composite configs")
		} else {
			c.SQLAdapterCredentials.validate("sql_adapter_credentials", issues)
		}
	default:
		issues.Add(fmt.Sprintf("encapsulation unsupported: %q", c.Encapsulation))
	}
	return issues.OrNil()
}

// DBAdapterConfig returns a config whose primary credentials are the database
// adapter's. Composite configs keep the python adapter credentials aside;
// direct configs are returned as they are.
func (c RuntimeConfig) DBAdapterConfig() RuntimeConfig {
	out := c
	out.Vars = maps.Clone(c.Vars)
	if c.encapsulation() != Composite || c.SQLAdapterCredentials == nil {
		return out
	}
	python := c.Credentials
	out.Encapsulation = Direct
	out.Credentials = *c.SQLAdapterCredentials
	out.SQLAdapterCredentials = nil
	out.PythonAdapterCredentials = &python
	return out
}

// ScriptsPath is the directory models may load helper scripts from.
func (c RuntimeConfig) ScriptsPath() string {
	dir, _ := c.Vars[ScriptsPathVar].(string)
	return filepath.Join(c.ProjectRoot, dir)
}
