package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFieldVisible_NoCondition(t *testing.T) {
	f := FormField{ID: "a", Type: FieldText}
	inputs := []map[string]any{
		nil,
		{},
		{"a": "x"},
		{"b": true, "c": 3.0},
	}
	for _, in := range inputs {
		assert.True(t, IsFieldVisible(f, in))
	}
}

func TestIsFieldVisible_Operators(t *testing.T) {
	tests := []struct {
		name   string
		cond   VisibilityCondition
		values map[string]any
		want   bool
	}{
		{"eq match", VisibilityCondition{FieldID: "g", Operator: OpEquals, ConditionValue: "v"}, map[string]any{"g": "v"}, true},
		{"eq mismatch", VisibilityCondition{FieldID: "g", Operator: OpEquals, ConditionValue: "v"}, map[string]any{"g": "w"}, false},
		{"eq missing", VisibilityCondition{FieldID: "g", Operator: OpEquals, ConditionValue: "v"}, map[string]any{}, false},
		{"default operator is eq", VisibilityCondition{FieldID: "g", ConditionValue: "v"}, map[string]any{"g": "v"}, true},
		{"eq bool", VisibilityCondition{FieldID: "g", ConditionValue: "true"}, map[string]any{"g": true}, true},
		{"neq empty sentinel with value", VisibilityCondition{FieldID: "g", Operator: OpNotEquals, ConditionValue: ""}, map[string]any{"g": "x"}, true},
		{"neq empty sentinel with empty", VisibilityCondition{FieldID: "g", Operator: OpNotEquals, ConditionValue: ""}, map[string]any{"g": ""}, false},
		{"neq empty sentinel missing", VisibilityCondition{FieldID: "g", Operator: OpNotEquals, ConditionValue: ""}, map[string]any{}, false},
		{"in member", VisibilityCondition{FieldID: "g", Operator: OpIn, ConditionValue: []string{"a", "b"}}, map[string]any{"g": "b"}, true},
		{"in not member", VisibilityCondition{FieldID: "g", Operator: OpIn, ConditionValue: []string{"a", "b"}}, map[string]any{"g": "c"}, false},
		{"contains substring", VisibilityCondition{FieldID: "g", Operator: OpContains, ConditionValue: "rep"}, map[string]any{"g": "need reparo"}, true},
		{"contains absent", VisibilityCondition{FieldID: "g", Operator: OpContains, ConditionValue: "rep"}, map[string]any{"g": "ok"}, false},
		{"contains list element", VisibilityCondition{FieldID: "g", Operator: OpContains, ConditionValue: "x"}, map[string]any{"g": []any{"y", "x"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := tt.cond
			f := FormField{ID: "f", Type: FieldText, VisibilityCondition: &cond}
			assert.Equal(t, tt.want, IsFieldVisible(f, tt.values))
		})
	}
}

func TestPruneHiddenFields_Chain(t *testing.T) {
	def := Default()
	diario, ok := def.Get("cronograma-diario-obra")
	assert.True(t, ok)

	values := map[string]any{
		"ordemServico":     "OS-1",
		"clima":            "chuva",
		"paralisacaoChuva": true,
		"horasParadas":     2.0,
	}
	assert.Equal(t, values, PruneHiddenFields(diario, values))

	// Changing the weather hides paralisacaoChuva, which in turn hides horasParadas.
	values["clima"] = "bom"
	pruned := PruneHiddenFields(diario, values)
	assert.NotContains(t, pruned, "paralisacaoChuva")
	assert.NotContains(t, pruned, "horasParadas")
	assert.Equal(t, "OS-1", pruned["ordemServico"])

	// The input map is not modified.
	assert.Contains(t, values, "horasParadas")
}

func TestVisibleFields(t *testing.T) {
	insp, ok := Default().Get("inspecao-seguranca")
	assert.True(t, ok)

	ids := func(fs []FormField) []string {
		out := make([]string, 0, len(fs))
		for _, f := range fs {
			out = append(out, f.ID)
		}
		return out
	}

	got := ids(VisibleFields(insp, map[string]any{"tipoAtividade": "altura"}))
	assert.Contains(t, got, "usoCinto")
	assert.Contains(t, got, "episConformes")
	assert.NotContains(t, got, "bloqueioEnergia")
	assert.NotContains(t, got, "acaoDesvio")

	got = ids(VisibleFields(insp, map[string]any{"tipoAtividade": "geral", "desvios": "guarda-corpo solto"}))
	assert.NotContains(t, got, "episConformes")
	assert.Contains(t, got, "acaoDesvio")
}
