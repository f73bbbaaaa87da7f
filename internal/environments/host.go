package environments

import "context"

const HostLocal = "local"

// Host is where an environment's code executes.
type Host interface {
	Kind() string
	Connect(ctx context.Context, def Definition) (Connection, error)
}

// Connection runs callables inside an environment.
type Connection interface {
	Run(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error)
	Close() error
}

// HostFactory builds the execution host for a declared environment.
type HostFactory func(credentials any) (Host, error)

// LocalHost executes code in the current process.
type LocalHost struct{}

func (LocalHost) Kind() string {
	return HostLocal
}

func (LocalHost) Connect(context.Context, Definition) (Connection, error) {
	return LocalConnection{}, nil
}

type LocalConnection struct{}

func (LocalConnection) Run(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	return fn(ctx)
}

func (LocalConnection) Close() error {
	return nil
}

func localHostFactory(any) (Host, error) {
	return LocalHost{}, nil
}
