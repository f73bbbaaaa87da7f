package environments

import (
	"fmt"
	"maps"
)

type Kind string

const (
	KindVirtualenv Kind = "virtualenv"
	KindConda      Kind = "conda"
	KindLocal      Kind = "local"
)

const (
	LocalName          = "local"
	DefaultMachineType = "S"
)

// Keys that describe where an environment runs rather than what it contains.
var infraKeys = map[string]struct{}{
	"host":         {},
	"remote_type":  {},
	"type":         {},
	"name":         {},
	"machine_type": {},
}

// Definition is an immutable description of one execution environment.
type Definition struct {
	Host        Host
	Kind        Kind
	Config      map[string]any
	MachineType string
}

// LocalDefinition mirrors the caller's own execution context.
func LocalDefinition() Definition {
	return Definition{
		Host:        LocalHost{},
		Kind:        KindLocal,
		Config:      map[string]any{},
		MachineType: DefaultMachineType,
	}
}

// Create validates a declared environment type and builds its definition.
// Accepted types are "venv" and "conda"; "venv" is stored as KindVirtualenv.
func Create(name, kind string, config map[string]any, opts Options) (Definition, error) {
	var resolved Kind
	switch kind {
	case "conda":
		resolved = KindConda
	case "venv":
		resolved = KindVirtualenv
	default:
		return Definition{}, parseErrorf(ErrInvalidType,
			"Invalid environment type (of %s) for %s. Please choose from: venv, conda.", kind, name)
	}

	parsed := make(map[string]any, len(config))
	for key, val := range config {
		if _, skip := infraKeys[key]; skip {
			continue
		}
		parsed[key] = val
	}

	host, err := opts.host()
	if err != nil {
		return Definition{}, fmt.Errorf("environment %s: %w", name, err)
	}
	return Definition{
		Host:        host,
		Kind:        resolved,
		Config:      parsed,
		MachineType: opts.machineType(),
	}, nil
}

// ConfigCopy returns a copy of the environment's package configuration.
func (d Definition) ConfigCopy() map[string]any {
	return maps.Clone(d.Config)
}

func (d Definition) IsLocal() bool {
	return d.Kind == KindLocal
}
