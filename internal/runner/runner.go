// Package runner executes model code against a database adapter or through
// teleport storage inside a resolved environment.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/fal-labs/falrun/internal/adapter"
	"github.com/fal-labs/falrun/internal/environments"
	"github.com/fal-labs/falrun/internal/model"
	"github.com/fal-labs/falrun/internal/platform/logging"
	"github.com/fal-labs/falrun/internal/platform/runid"
	"github.com/fal-labs/falrun/internal/teleport"
)

var ErrNotSupported = errors.New("environment not supported")

type Runner struct {
	reconstructor *adapter.Reconstructor
	storage       teleport.Storage
	scripts       *model.SearchPath
	scriptsFS     afero.Fs
	logger        *slog.Logger
}

// New returns a runner. A nil storage uses the local filesystem and S3.
func New(reconstructor *adapter.Reconstructor, storage teleport.Storage, logger *slog.Logger) *Runner {
	logger = logging.OrDefault(logger)
	if reconstructor == nil {
		reconstructor = adapter.NewReconstructor(logger)
	}
	if storage == nil {
		storage = teleport.NewURLStorage(afero.NewOsFs())
	}
	return &Runner{
		reconstructor: reconstructor,
		storage:       storage,
		scripts:       model.Scripts,
		scriptsFS:     afero.NewOsFs(),
		logger:        logger,
	}
}

// runScoped retrieves main and calls it with b while the project's scripts
// directory is on the search path. Errors from main are returned as is.
func (r *Runner) runScoped(ctx context.Context, code model.Code, cfg adapter.RuntimeConfig, b model.Bindings) (any, error) {
	b.Script = func(name string) (string, error) {
		return r.scripts.Lookup(r.scriptsFS, name)
	}
	return r.scripts.With(cfg.ScriptsPath(), func() (any, error) {
		main, err := code.RetrieveMain()
		if err != nil {
			return nil, err
		}
		return main(ctx, b)
	})
}

// inEnvironment runs fn on env's host. Only local environments on a local
// host are accepted.
func (r *Runner) inEnvironment(ctx context.Context, env environments.Definition, fn func(ctx context.Context) (any, error)) (any, error) {
	host := env.Host
	if host == nil {
		host = environments.LocalHost{}
	}
	if host.Kind() != environments.HostLocal || !env.IsLocal() {
		return nil, fmt.Errorf("%w: Environment kind '%s' is not supported. Only 'local' execution is available.", ErrNotSupported, env.Kind)
	}

	if runid.FromContext(ctx) == "" {
		ctx = runid.WithRunID(ctx, runid.New())
	}
	conn, err := host.Connect(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("connect %s host: %w", host.Kind(), err)
	}
	defer func() { _ = conn.Close() }()

	r.logger.DebugContext(ctx, "model run started", "run_id", runid.FromContext(ctx), "environment", string(env.Kind))
	return conn.Run(ctx, fn)
}
