package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Flags are the invocation flags of the host tool that affect how an adapter
// is rebuilt.
type Flags struct {
	ProfilesDir string `json:"profiles_dir,omitempty" yaml:"profiles_dir,omitempty"`
	Target      string `json:"target,omitempty" yaml:"target,omitempty"`
	Threads     int    `json:"threads,omitempty" yaml:"threads,omitempty"`
	Debug       bool   `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// Node is a compiled model or source known to the host tool.
type Node struct {
	UniqueID     string `json:"unique_id" yaml:"unique_id"`
	Name         string `json:"name" yaml:"name"`
	Schema       string `json:"schema,omitempty" yaml:"schema,omitempty"`
	RelationName string `json:"relation_name,omitempty" yaml:"relation_name,omitempty"`
}

type Manifest struct {
	Nodes map[string]Node `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

// RelationFor returns the relation name of the node called name, if any.
func (m Manifest) RelationFor(name string) (string, bool) {
	for _, node := range m.Nodes {
		if strings.EqualFold(node.Name, name) && node.RelationName != "" {
			return node.RelationName, true
		}
	}
	return "", false
}

type Macro struct {
	Name string `json:"name" yaml:"name"`
	SQL  string `json:"sql" yaml:"sql"`
}

// MacroManifest carries SQL templates that override the adapter's built-in
// statements. Templates see {{ .Relation }}.
type MacroManifest struct {
	Macros map[string]Macro `json:"macros,omitempty" yaml:"macros,omitempty"`
}

const (
	MacroReadRelation = "read_relation"
	MacroDropRelation = "drop_relation"
)

var builtinMacros = map[string]string{
	MacroReadRelation: "select * from {{ .Relation }}",
	MacroDropRelation: "drop table if exists {{ .Relation }}",
}

// Render expands macro name for relation, preferring a manifest override.
func (m MacroManifest) Render(name, relation string) (string, error) {
	text, ok := builtinMacros[name]
	if macro, found := m.Macros[name]; found && strings.TrimSpace(macro.SQL) != "" {
		text, ok = macro.SQL, true
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMacro, name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse macro %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Relation string }{Relation: relation}); err != nil {
		return "", fmt.Errorf("render macro %s: %w", name, err)
	}
	return buf.String(), nil
}

// Bundle is everything needed to rebuild an adapter in another process.
type Bundle struct {
	Flags         Flags         `json:"flags"`
	Config        RuntimeConfig `json:"config"`
	Manifest      Manifest      `json:"manifest"`
	MacroManifest MacroManifest `json:"macro_manifest"`
}

func (b Bundle) Marshal() ([]byte, error) {
	return json.Marshal(b)
}

func UnmarshalBundle(data []byte) (Bundle, error) {
	var b Bundle
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return Bundle{}, fmt.Errorf("decode adapter bundle: %w", err)
	}
	if err := b.Config.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}
