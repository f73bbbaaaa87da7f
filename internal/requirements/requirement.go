// Package requirements describes the packages needed to reproduce the
// adapter's execution environment elsewhere.
package requirements

import "strings"

// HostPackage is the package providing the python-model adapter.
const HostPackage = "dbt-postgres-python"

const TeleportExtra = "teleport"

// Adapter types whose package name does not follow dbt-<type>.
var specialAdapters = map[string]string{
	"athena": "dbt-athena-community",
}

// Requirement is one package, optionally pinned to a version.
type Requirement struct {
	Package string `json:"package" yaml:"package"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// String formats r as a pip requirement.
func (r Requirement) String() string {
	if r.Version == "" {
		return r.Package
	}
	return r.Package + "==" + r.Version
}

// AdapterPackage returns the package implementing adapterType.
func AdapterPackage(adapterType string) string {
	adapterType = strings.ToLower(strings.TrimSpace(adapterType))
	if pkg, ok := specialAdapters[adapterType]; ok {
		return pkg
	}
	return "dbt-" + adapterType
}
