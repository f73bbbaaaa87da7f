package adapter

import (
	"errors"
	"testing"
)

func TestMacroManifestRender(t *testing.T) {
	var macros MacroManifest
	got, err := macros.Render(MacroReadRelation, `"main"."orders"`)
	if err != nil {
		t.Fatalf("Render() err=%v", err)
	}
	if got != `select * from "main"."orders"` {
		t.Fatalf("Render()=%q", got)
	}

	macros.Macros = map[string]Macro{
		MacroReadRelation: {Name: MacroReadRelation, SQL: "select * from {{ .Relation }} limit 10"},
	}
	got, err = macros.Render(MacroReadRelation, `"orders"`)
	if err != nil {
		t.Fatalf("Render() err=%v", err)
	}
	if got != `select * from "orders" limit 10` {
		t.Fatalf("Render() override=%q", got)
	}

	if _, err := macros.Render("vacuum", "x"); !errors.Is(err, ErrUnknownMacro) {
		t.Fatalf("Render() err=%v, want ErrUnknownMacro", err)
	}
}

func TestManifestRelationFor(t *testing.T) {
	m := Manifest{Nodes: map[string]Node{
		"model.shop.orders": {UniqueID: "model.shop.orders", Name: "orders", RelationName: `"analytics"."orders"`},
	}}
	if rel, ok := m.RelationFor("Orders"); !ok || rel != `"analytics"."orders"` {
		t.Fatalf("RelationFor()=(%q,%v)", rel, ok)
	}
	if _, ok := m.RelationFor("customers"); ok {
		t.Fatalf("RelationFor() found unknown node")
	}
}

func TestBundleRoundTrip(t *testing.T) {
	in := Bundle{
		Flags:  Flags{Target: "dev", Threads: 4},
		Config: NewCompositeConfig("shop", "/project", Credentials{Type: "fal"}, Credentials{Type: "postgres", Host: "db"}),
		Manifest: Manifest{Nodes: map[string]Node{
			"model.shop.orders": {UniqueID: "model.shop.orders", Name: "orders"},
		}},
	}
	data, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal() err=%v", err)
	}
	out, err := UnmarshalBundle(data)
	if err != nil {
		t.Fatalf("UnmarshalBundle() err=%v", err)
	}
	if out.Config.Encapsulation != Composite || out.Config.SQLAdapterCredentials.Host != "db" {
		t.Fatalf("config lost in round trip: %+v", out.Config)
	}
	if out.Flags.Threads != 4 || len(out.Manifest.Nodes) != 1 {
		t.Fatalf("bundle lost fields: %+v", out)
	}

	if _, err := UnmarshalBundle([]byte(`{"config":{"project_root":"/p","credentials":{"type":"x"}},"extra":1}`)); err == nil {
		t.Fatalf("UnmarshalBundle() expected error for unknown field")
	}
}

func TestQualifyRelation(t *testing.T) {
	tests := []struct{ schema, rel, want string }{
		{"", "orders", `"orders"`},
		{"analytics", "orders", `"analytics"."orders"`},
		{"analytics", `"raw"."orders"`, `"raw"."orders"`},
		{"", `we"ird`, `we"ird`},
	}
	for _, tt := range tests {
		if got := QualifyRelation(tt.schema, tt.rel); got != tt.want {
			t.Fatalf("QualifyRelation(%q,%q)=%q, want %q", tt.schema, tt.rel, got, tt.want)
		}
	}
	if got := QuoteIdent(`a"b`); got != `"a""b"` {
		t.Fatalf("QuoteIdent()=%q", got)
	}
}
