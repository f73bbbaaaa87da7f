package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/fal-labs/falrun/internal/adapter"
	"github.com/fal-labs/falrun/internal/environments"
	"github.com/fal-labs/falrun/internal/model"
	"github.com/fal-labs/falrun/internal/platform/runid"
)

// RunWithAdapter calls the model's main with read_df and write_df bound to a.
func (r *Runner) RunWithAdapter(ctx context.Context, code model.Code, a adapter.Adapter, cfg adapter.RuntimeConfig) (any, error) {
	return r.runScoped(ctx, code, cfg, model.Bindings{
		ReadDF: a.ReadRelation,
		WriteDF: func(ctx context.Context, relation string, data arrow.Table) error {
			resp, err := a.WriteRelation(ctx, relation, data)
			if err != nil {
				return err
			}
			r.logger.DebugContext(ctx, "relation written",
				"run_id", runid.FromContext(ctx),
				"relation", relation,
				"code", resp.Code,
				"rows", resp.RowsAffected,
			)
			return nil
		},
	})
}

// RunInEnvironmentWithAdapter reconstructs the database adapter on the
// environment's host and runs the model against it. adapterType, when set,
// must name either adapter declared in cfg.
func (r *Runner) RunInEnvironmentWithAdapter(
	ctx context.Context,
	env environments.Definition,
	code model.Code,
	flags adapter.Flags,
	cfg adapter.RuntimeConfig,
	manifest adapter.Manifest,
	macros adapter.MacroManifest,
	adapterType string,
) (any, error) {
	return r.inEnvironment(ctx, env, func(ctx context.Context) (any, error) {
		a, err := r.reconstructor.Reconstruct(ctx, flags, cfg, manifest, macros)
		if err != nil {
			return nil, err
		}
		defer func() { _ = a.Close() }()

		if err := checkAdapterType(adapterType, cfg, a); err != nil {
			return nil, err
		}
		return r.RunWithAdapter(ctx, code, a, cfg)
	})
}

func checkAdapterType(adapterType string, cfg adapter.RuntimeConfig, a adapter.Adapter) error {
	want := strings.ToLower(strings.TrimSpace(adapterType))
	if want == "" || want == a.Type() || want == strings.ToLower(cfg.Credentials.Type) {
		return nil
	}
	return fmt.Errorf("%w: model expects %s, profile provides %s", adapter.ErrAdapterMismatch, adapterType, a.Type())
}
