package runner

import (
	"context"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/fal-labs/falrun/internal/adapter"
	"github.com/fal-labs/falrun/internal/environments"
	"github.com/fal-labs/falrun/internal/model"
	"github.com/fal-labs/falrun/internal/platform/runid"
	"github.com/fal-labs/falrun/internal/teleport"
)

// RunWithTeleport calls the model's main with read_df and write_df bound to
// teleport storage. Successful writes are recorded in locations.
func (r *Runner) RunWithTeleport(ctx context.Context, code model.Code, info teleport.Info, locations teleport.DataLocation, cfg adapter.RuntimeConfig) (any, error) {
	relay := teleport.NewRelay(info, locations, r.storage, r.logger.With(slog.String("run_id", runid.FromContext(ctx))))
	return r.runScoped(ctx, code, cfg, model.Bindings{
		ReadDF: relay.Read,
		WriteDF: func(ctx context.Context, relation string, data arrow.Table) error {
			_, err := relay.Write(ctx, relation, data)
			return err
		},
	})
}

func (r *Runner) RunInEnvironmentWithTeleport(
	ctx context.Context,
	env environments.Definition,
	code model.Code,
	info teleport.Info,
	locations teleport.DataLocation,
	cfg adapter.RuntimeConfig,
) (any, error) {
	return r.inEnvironment(ctx, env, func(ctx context.Context) (any, error) {
		return r.RunWithTeleport(ctx, code, info, locations, cfg)
	})
}
