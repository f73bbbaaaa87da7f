package environments

import "strings"

type Options struct {
	MachineType string
	// Credentials are handed to HostFactory unchanged.
	Credentials any
	HostFactory HostFactory
}

func (o Options) machineType() string {
	if strings.TrimSpace(o.MachineType) == "" {
		return DefaultMachineType
	}
	return o.MachineType
}

func (o Options) host() (Host, error) {
	factory := o.HostFactory
	if factory == nil {
		factory = localHostFactory
	}
	return factory(o.Credentials)
}
