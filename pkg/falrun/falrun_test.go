package falrun_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/fal-labs/falrun/pkg/falrun"
)

func countModel(ctx context.Context, b falrun.Bindings) (any, error) {
	schema := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Int64}}, nil)
	rb := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer rb.Release()
	rb.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	rec := rb.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	if err := b.WriteDF(ctx, "ids", tbl); err != nil {
		return nil, err
	}
	back, err := b.ReadDF(ctx, "ids")
	if err != nil {
		return nil, err
	}
	defer back.Release()
	return back.NumRows(), nil
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runtime := "project_name: shop\ncredentials:\n  type: sqlite\n  path: warehouse.db\n"
	if err := os.WriteFile(filepath.Join(dir, "fal_runtime.yml"), []byte(runtime), 0o644); err != nil {
		t.Fatalf("WriteFile() err=%v", err)
	}
	t.Setenv("FAL_TELEPORT_FORMAT", "")
	t.Setenv("FAL_ENVIRONMENT", "local")
	return dir
}

func TestExecuteRunsRegisteredModel(t *testing.T) {
	dir := writeProject(t)
	catalog := falrun.NewCatalog()
	if err := falrun.RegisterIn(catalog, "ids_count", countModel); err != nil {
		t.Fatalf("RegisterIn() err=%v", err)
	}

	var out bytes.Buffer
	code := falrun.Execute(context.Background(), falrun.Options{
		Catalog: catalog,
		Args:    []string{"run", "ids_count", "-p", dir},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdout:  &out,
		Stderr:  io.Discard,
	})
	if code != 0 {
		t.Fatalf("Execute() code=%d", code)
	}
	if strings.TrimSpace(out.String()) != "3" {
		t.Fatalf("output=%q, want 3", out.String())
	}

	code = falrun.Execute(context.Background(), falrun.Options{
		Catalog: catalog,
		Args:    []string{"run", "missing", "-p", dir},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	})
	if code != 1 {
		t.Fatalf("Execute() of unregistered model code=%d, want 1", code)
	}
}

func TestRegister(t *testing.T) {
	falrun.Register("falrun_test_register", countModel)
	if _, ok := falrun.Models.Lookup("falrun_test_register"); !ok {
		t.Fatalf("Models=%v, want falrun_test_register", falrun.Models.Names())
	}
	if err := falrun.RegisterIn(falrun.Models, "falrun_test_register", countModel); !errors.Is(err, falrun.ErrDuplicateModel) {
		t.Fatalf("RegisterIn() err=%v, want ErrDuplicateModel", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("Register() of a duplicate name did not panic")
		}
	}()
	falrun.Register("falrun_test_register", countModel)
}
