package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v2"
)

//go:embed definitions.yaml
var definitionsYAML []byte

// Registry is the read-only catalog of form definitions. It is built once
// and shared by validation, the submission workflow, exports and the HTTP
// schema endpoints.
type Registry struct {
	order []string
	defs  map[string]FormDefinition
}

type definitionsFile struct {
	Forms []FormDefinition `yaml:"forms"`
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded definitions. It
// panics if the embedded document is broken, which only happens on a bad
// build.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := LoadRegistry(definitionsYAML)
		if err != nil {
			panic(fmt.Sprintf("schema: embedded definitions: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// LoadRegistry decodes a YAML document with a top-level "forms" list.
func LoadRegistry(data []byte) (*Registry, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode definitions: %w", err)
	}
	return NewRegistry(file.Forms)
}

func NewRegistry(defs []FormDefinition) (*Registry, error) {
	r := &Registry{defs: make(map[string]FormDefinition, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("form definition without id")
		}
		if _, dup := r.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate form id %q", d.ID)
		}
		if d.OsFieldID == "" {
			d.OsFieldID = DefaultOsFieldID
		}
		fields, err := normalizeFields(d)
		if err != nil {
			return nil, err
		}
		d.Fields = fields
		r.defs[d.ID] = d
		r.order = append(r.order, d.ID)
	}

	for _, id := range r.order {
		d := r.defs[id]
		for i, t := range d.Triggers {
			if _, ok := r.defs[t.LinkedFormID]; !ok {
				return nil, fmt.Errorf("form %q trigger %d links unknown form %q", d.ID, i, t.LinkedFormID)
			}
		}
		for _, f := range d.Fields {
			if f.LinkedForm != nil {
				if _, ok := r.defs[f.LinkedForm.FormID]; !ok {
					return nil, fmt.Errorf("form %q field %q links unknown form %q", d.ID, f.ID, f.LinkedForm.FormID)
				}
			}
		}
	}
	return r, nil
}

func normalizeFields(d FormDefinition) ([]FormField, error) {
	seen := make(map[string]bool, len(d.Fields))
	out := make([]FormField, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.ID == "" {
			return nil, fmt.Errorf("form %q has a field without id", d.ID)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("form %q: duplicate field id %q", d.ID, f.ID)
		}
		seen[f.ID] = true
		if !f.Type.Valid() {
			return nil, fmt.Errorf("form %q field %q: unknown type %q", d.ID, f.ID, f.Type)
		}
		if f.Type == FieldSelect && len(f.Options) == 0 {
			return nil, fmt.Errorf("form %q field %q: select without options", d.ID, f.ID)
		}
		if c := f.VisibilityCondition; c != nil {
			cond := *c
			if cond.Operator == "" {
				cond.Operator = OpEquals
			}
			cond.ConditionValue = normalizeConditionValue(cond.ConditionValue)
			f.VisibilityCondition = &cond
		}
		out = append(out, f)
	}
	for _, f := range out {
		if c := f.VisibilityCondition; c != nil && !seen[c.FieldID] {
			return nil, fmt.Errorf("form %q field %q: condition references unknown field %q", d.ID, f.ID, c.FieldID)
		}
	}
	return out, nil
}

// yaml.v2 decodes sequences into []interface{}; conditions only ever hold
// scalars so they are flattened to strings once.
func normalizeConditionValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			out = append(out, ValueString(item))
		}
		return out
	case []string:
		return vv
	case nil:
		return ""
	default:
		return ValueString(vv)
	}
}

// Get looks a definition up by exact id. The boolean is false for unknown ids.
func (r *Registry) Get(id string) (FormDefinition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// List returns every definition in declaration order.
func (r *Registry) List() []FormDefinition {
	out := make([]FormDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}
