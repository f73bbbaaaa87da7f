package adapter

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDBAdapterConfig_Direct(t *testing.T) {
	cfg := NewDirectConfig("analytics", "/project", Credentials{Type: "postgres", Host: "db"})
	got := cfg.DBAdapterConfig()
	if got.Credentials.Type != "postgres" {
		t.Fatalf("Credentials.Type=%q, want postgres", got.Credentials.Type)
	}
	if got.PythonAdapterCredentials != nil {
		t.Fatalf("direct config should not carry python credentials")
	}
}

func TestDBAdapterConfig_Composite(t *testing.T) {
	cfg := NewCompositeConfig("analytics", "/project",
		Credentials{Type: "fal"},
		Credentials{Type: "sqlite", Path: "warehouse.db"},
	)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	got := cfg.DBAdapterConfig()
	if got.Credentials.Type != "sqlite" {
		t.Fatalf("Credentials.Type=%q, want sqlite", got.Credentials.Type)
	}
	if got.PythonAdapterCredentials == nil || got.PythonAdapterCredentials.Type != "fal" {
		t.Fatalf("PythonAdapterCredentials=%v, want fal", got.PythonAdapterCredentials)
	}
	if again := got.DBAdapterConfig(); again.Credentials.Type != "sqlite" {
		t.Fatalf("DBAdapterConfig() should be idempotent, got %q", again.Credentials.Type)
	}
	if cfg.Credentials.Type != "fal" {
		t.Fatalf("original config mutated: %q", cfg.Credentials.Type)
	}
}

func TestRuntimeConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RuntimeConfig
		wantErr string
	}{
		{
			name: "ok direct",
			cfg:  NewDirectConfig("p", "/project", Credentials{Type: "postgres"}),
		},
		{
			name:    "missing root",
			cfg:     NewDirectConfig("p", "", Credentials{Type: "postgres"}),
			wantErr: "project_root is required",
		},
		{
			name: "composite without sql credentials",
			cfg: RuntimeConfig{
				ProjectRoot:   "/project",
				Encapsulation: Composite,
				Credentials:   Credentials{Type: "fal"},
			},
			wantErr: "sql_adapter_credentials is required",
		},
		{
			name: "direct with sql credentials",
			cfg: RuntimeConfig{
				ProjectRoot:           "/project",
				Credentials:           Credentials{Type: "postgres"},
				SQLAdapterCredentials: &Credentials{Type: "postgres"},
			},
			wantErr: "requires encapsulation composite",
		},
		{
			name: "unknown encapsulation",
			cfg: RuntimeConfig{
				ProjectRoot:   "/project",
				Encapsulation: "nested",
				Credentials:   Credentials{Type: "postgres"},
			},
			wantErr: "encapsulation unsupported",
		},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if tt.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: Validate() err=%v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Fatalf("%s: Validate() err=%v, want %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestScriptsPath(t *testing.T) {
	cfg := NewDirectConfig("p", "/project", Credentials{Type: "sqlite"})
	if got := cfg.ScriptsPath(); got != "/project" {
		t.Fatalf("ScriptsPath()=%q, want /project", got)
	}
	cfg.Vars[ScriptsPathVar] = "scripts"
	if got := cfg.ScriptsPath(); got != filepath.Join("/project", "scripts") {
		t.Fatalf("ScriptsPath()=%q, want /project/scripts", got)
	}
}
