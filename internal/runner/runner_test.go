package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/spf13/afero"

	"github.com/fal-labs/falrun/internal/adapter"
	"github.com/fal-labs/falrun/internal/environments"
	"github.com/fal-labs/falrun/internal/frame"
	"github.com/fal-labs/falrun/internal/model"
	"github.com/fal-labs/falrun/internal/platform/runid"
	"github.com/fal-labs/falrun/internal/teleport"
)

func sqliteConfig(t *testing.T) adapter.RuntimeConfig {
	t.Helper()
	cfg := adapter.NewDirectConfig("shop", t.TempDir(), adapter.Credentials{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "warehouse.db"),
	})
	cfg.Vars[adapter.ScriptsPathVar] = "scripts"
	return cfg
}

func ordersTable(t *testing.T) arrow.Table {
	t.Helper()
	tbl, err := frame.New(frame.Schema(
		frame.Column{Name: "id", Type: frame.Int64},
		frame.Column{Name: "amount", Type: frame.Float64},
	), [][]any{{int64(1), 10.0}, {int64(2), 32.5}})
	if err != nil {
		t.Fatalf("frame.New() err=%v", err)
	}
	t.Cleanup(tbl.Release)
	return tbl
}

// copyModel writes orders into relation "orders" then reads it back and
// returns the row count.
func copyModel(t *testing.T, sawDirs *[]string) model.Code {
	return model.NewCode("orders_copy", func(ctx context.Context, b model.Bindings) (any, error) {
		*sawDirs = model.Scripts.Dirs()
		if err := b.WriteDF(ctx, "orders", ordersTable(t)); err != nil {
			return nil, err
		}
		tbl, err := b.ReadDF(ctx, "orders")
		if err != nil {
			return nil, err
		}
		defer tbl.Release()
		return tbl.NumRows(), nil
	})
}

func TestRunInEnvironmentWithAdapter(t *testing.T) {
	cfg := sqliteConfig(t)
	var dirs []string
	r := New(nil, nil, nil)

	got, err := r.RunInEnvironmentWithAdapter(context.Background(), environments.LocalDefinition(),
		copyModel(t, &dirs), adapter.Flags{}, cfg, adapter.Manifest{}, adapter.MacroManifest{}, "sqlite")
	if err != nil {
		t.Fatalf("RunInEnvironmentWithAdapter() err=%v", err)
	}
	if got != int64(2) {
		t.Fatalf("result=%v, want 2", got)
	}
	want := filepath.Join(cfg.ProjectRoot, "scripts")
	if len(dirs) == 0 || dirs[0] != want {
		t.Fatalf("search path during run=%v, want %s first", dirs, want)
	}
	for _, d := range model.Scripts.Dirs() {
		if d == want {
			t.Fatalf("scripts dir left on search path: %v", model.Scripts.Dirs())
		}
	}
}

func TestRunInEnvironment_RejectsNonLocal(t *testing.T) {
	def, err := environments.Create("pandas", "venv", map[string]any{"requirements": []any{"pandas"}}, environments.Options{})
	if err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	called := false
	code := model.NewCode("m", func(context.Context, model.Bindings) (any, error) {
		called = true
		return nil, nil
	})
	r := New(nil, nil, nil)

	_, err = r.RunInEnvironmentWithAdapter(context.Background(), def, code,
		adapter.Flags{}, sqliteConfig(t), adapter.Manifest{}, adapter.MacroManifest{}, "")
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("RunInEnvironmentWithAdapter() err=%v, want ErrNotSupported", err)
	}
	if !strings.Contains(err.Error(), "Environment kind 'virtualenv' is not supported. Only 'local' execution is available.") {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	_, err = r.RunInEnvironmentWithTeleport(context.Background(), def, code, teleport.Info{}, teleport.DataLocation{}, sqliteConfig(t))
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("RunInEnvironmentWithTeleport() err=%v, want ErrNotSupported", err)
	}
	if called {
		t.Fatalf("model ran in a rejected environment")
	}
}

type remoteHost struct{}

func (remoteHost) Kind() string { return "remote" }

func (remoteHost) Connect(context.Context, environments.Definition) (environments.Connection, error) {
	return environments.LocalConnection{}, nil
}

func TestRunInEnvironment_RejectsNonLocalHost(t *testing.T) {
	def := environments.LocalDefinition()
	def.Host = remoteHost{}
	r := New(nil, nil, nil)
	code := model.NewCode("m", func(context.Context, model.Bindings) (any, error) { return nil, nil })
	_, err := r.RunInEnvironmentWithTeleport(context.Background(), def, code, teleport.Info{}, teleport.DataLocation{}, sqliteConfig(t))
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("err=%v, want ErrNotSupported", err)
	}
}

func TestRunWithAdapter_UserErrorsUnchanged(t *testing.T) {
	boom := errors.New("model failed")
	code := model.NewCode("m", func(context.Context, model.Bindings) (any, error) { return nil, boom })
	r := New(nil, nil, nil)
	cfg := sqliteConfig(t)

	_, err := r.RunInEnvironmentWithAdapter(context.Background(), environments.LocalDefinition(), code,
		adapter.Flags{}, cfg, adapter.Manifest{}, adapter.MacroManifest{}, "")
	if err != boom {
		t.Fatalf("err=%v, want the model's error value", err)
	}

	missing := model.Code{Name: "no_main", Symbols: map[string]any{}}
	_, err = r.RunInEnvironmentWithAdapter(context.Background(), environments.LocalDefinition(), missing,
		adapter.Flags{}, cfg, adapter.Manifest{}, adapter.MacroManifest{}, "")
	if !errors.Is(err, model.ErrSymbolNotFound) {
		t.Fatalf("err=%v, want ErrSymbolNotFound", err)
	}
}

func TestRunInEnvironmentWithAdapter_TypeMismatch(t *testing.T) {
	code := model.NewCode("m", func(context.Context, model.Bindings) (any, error) { return nil, nil })
	_, err := New(nil, nil, nil).RunInEnvironmentWithAdapter(context.Background(), environments.LocalDefinition(), code,
		adapter.Flags{}, sqliteConfig(t), adapter.Manifest{}, adapter.MacroManifest{}, "snowflake")
	if !errors.Is(err, adapter.ErrAdapterMismatch) {
		t.Fatalf("err=%v, want ErrAdapterMismatch", err)
	}
}

func TestRunInEnvironment_AttachesRunID(t *testing.T) {
	var seen string
	code := model.NewCode("m", func(ctx context.Context, _ model.Bindings) (any, error) {
		seen = runid.FromContext(ctx)
		return nil, nil
	})
	_, err := New(nil, nil, nil).RunInEnvironmentWithTeleport(context.Background(), environments.LocalDefinition(), code,
		teleport.Info{}, teleport.DataLocation{}, sqliteConfig(t))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if seen == "" {
		t.Fatalf("run id not attached")
	}
}

func TestRunInEnvironmentWithTeleport(t *testing.T) {
	fs := afero.NewMemMapFs()
	info := teleport.Info{
		Format:      teleport.FormatParquet,
		Credentials: teleport.Credentials{Type: teleport.CredentialsLocal, LocalPath: "/teleport"},
	}
	locations := teleport.DataLocation{}
	var dirs []string
	r := New(nil, teleport.NewURLStorage(fs), nil)

	got, err := r.RunInEnvironmentWithTeleport(context.Background(), environments.LocalDefinition(),
		copyModel(t, &dirs), info, locations, sqliteConfig(t))
	if err != nil {
		t.Fatalf("RunInEnvironmentWithTeleport() err=%v", err)
	}
	if got != int64(2) {
		t.Fatalf("result=%v, want 2", got)
	}
	if !reflect.DeepEqual(locations, teleport.DataLocation{"orders": "orders.parquet"}) {
		t.Fatalf("locations=%v", locations)
	}
}

func TestRunWithAdapter_ScriptLookup(t *testing.T) {
	cfg := sqliteConfig(t)
	scripts := filepath.Join(cfg.ProjectRoot, "scripts")
	if err := os.MkdirAll(scripts, 0o755); err != nil {
		t.Fatalf("MkdirAll() err=%v", err)
	}
	if err := os.WriteFile(filepath.Join(scripts, "helpers.sql"), []byte("select 1"), 0o644); err != nil {
		t.Fatalf("WriteFile() err=%v", err)
	}

	code := model.NewCode("uses_helper", func(_ context.Context, b model.Bindings) (any, error) {
		if _, err := b.Script("missing.sql"); !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("Script(missing.sql) err=%v, want not exist", err)
		}
		return b.Script("helpers.sql")
	})
	got, err := New(nil, nil, nil).RunInEnvironmentWithAdapter(context.Background(), environments.LocalDefinition(),
		code, adapter.Flags{}, cfg, adapter.Manifest{}, adapter.MacroManifest{}, "")
	if err != nil {
		t.Fatalf("RunInEnvironmentWithAdapter() err=%v", err)
	}
	if got != filepath.Join(scripts, "helpers.sql") {
		t.Fatalf("Script()=%v, want %s", got, filepath.Join(scripts, "helpers.sql"))
	}
}
