package adapter

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fal-labs/falrun/internal/frame"
)

func sqliteConfig(t *testing.T) RuntimeConfig {
	t.Helper()
	return NewCompositeConfig("shop", t.TempDir(),
		Credentials{Type: "fal"},
		Credentials{Type: "sqlite", Path: filepath.Join(t.TempDir(), "warehouse.db")},
	)
}

func TestReconstruct_WriteThenRead(t *testing.T) {
	ctx := context.Background()
	a, err := NewReconstructor(nil).Reconstruct(ctx, Flags{Debug: true}, sqliteConfig(t), Manifest{}, MacroManifest{})
	if err != nil {
		t.Fatalf("Reconstruct() err=%v", err)
	}
	defer func() { _ = a.Close() }()

	if a.Type() != "sqlite" {
		t.Fatalf("Type()=%q, want sqlite", a.Type())
	}

	rows := [][]any{
		{int64(1), "ada", 9.5, true},
		{int64(2), "grace", nil, false},
	}
	tbl, err := frame.New(frame.Schema(
		frame.Column{Name: "id", Type: frame.Int64},
		frame.Column{Name: "customer", Type: frame.String},
		frame.Column{Name: "amount", Type: frame.Float64},
		frame.Column{Name: "paid", Type: frame.Boolean},
	), rows)
	if err != nil {
		t.Fatalf("frame.New() err=%v", err)
	}
	defer tbl.Release()

	resp, err := a.WriteRelation(ctx, "orders", tbl)
	if err != nil {
		t.Fatalf("WriteRelation() err=%v", err)
	}
	if resp.RowsAffected != 2 {
		t.Fatalf("RowsAffected=%d, want 2", resp.RowsAffected)
	}

	// A second write replaces the relation.
	if _, err := a.WriteRelation(ctx, "orders", tbl); err != nil {
		t.Fatalf("WriteRelation() again err=%v", err)
	}

	got, err := a.ReadRelation(ctx, "orders")
	if err != nil {
		t.Fatalf("ReadRelation() err=%v", err)
	}
	defer got.Release()

	gotRows, err := frame.Rows(got)
	if err != nil {
		t.Fatalf("frame.Rows() err=%v", err)
	}
	if !reflect.DeepEqual(gotRows, rows) {
		t.Fatalf("ReadRelation() rows=%v, want %v", gotRows, rows)
	}
}

func TestReconstruct_ManifestRelation(t *testing.T) {
	ctx := context.Background()
	manifest := Manifest{Nodes: map[string]Node{
		"model.shop.orders": {UniqueID: "model.shop.orders", Name: "orders", RelationName: `"main"."orders_v2"`},
	}}
	a, err := NewReconstructor(nil).Reconstruct(ctx, Flags{}, sqliteConfig(t), manifest, MacroManifest{})
	if err != nil {
		t.Fatalf("Reconstruct() err=%v", err)
	}
	defer func() { _ = a.Close() }()

	if got := a.Relation("orders"); got != `"main"."orders_v2"` {
		t.Fatalf("Relation()=%q", got)
	}
	if got := a.Relation("customers"); got != `"customers"` {
		t.Fatalf("Relation()=%q", got)
	}
}

func TestReconstruct_UnsupportedAdapter(t *testing.T) {
	cfg := NewDirectConfig("shop", "/project", Credentials{Type: "oracle"})
	_, err := NewReconstructor(nil).Reconstruct(context.Background(), Flags{}, cfg, Manifest{}, MacroManifest{})
	if !errors.Is(err, ErrUnsupportedAdapter) {
		t.Fatalf("Reconstruct() err=%v, want ErrUnsupportedAdapter", err)
	}
}

func TestReconstruct_InvalidConfig(t *testing.T) {
	_, err := NewReconstructor(nil).Reconstruct(context.Background(), Flags{}, RuntimeConfig{}, Manifest{}, MacroManifest{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Reconstruct() err=%v, want *ValidationError", err)
	}
}

func TestFromBundle(t *testing.T) {
	data, err := Bundle{Config: sqliteConfig(t)}.Marshal()
	if err != nil {
		t.Fatalf("Marshal() err=%v", err)
	}
	a, err := NewReconstructor(nil).FromBundle(context.Background(), data)
	if err != nil {
		t.Fatalf("FromBundle() err=%v", err)
	}
	_ = a.Close()
}
