package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateTriggers_DiarioOpensRNC(t *testing.T) {
	diario, _ := Default().Get("cronograma-diario-obra")

	nav := EvaluateTriggers(diario, map[string]any{
		"ordemServico":  "OS-7",
		"emissaoRNCDia": "S",
	}, TriggerContext{RecordID: "41", OsNumber: "OS-7"})

	require.NotNil(t, nav)
	assert.Equal(t, "rnc-report", nav.LinkedFormID)
	assert.Equal(t, map[string]string{"os": "OS-7", "originatingFormId": "41"}, nav.Params)
	assert.Equal(t, []string{"cronograma-diario-obra"}, nav.Chain)
}

func TestEvaluateTriggers_NoMatchEndsChain(t *testing.T) {
	diario, _ := Default().Get("cronograma-diario-obra")
	assert.Nil(t, EvaluateTriggers(diario, map[string]any{"emissaoRNCDia": "N"}, TriggerContext{RecordID: "1"}))

	rnc, _ := Default().Get("rnc")
	assert.Nil(t, EvaluateTriggers(rnc, map[string]any{"ordemServico": "OS-42", "gravidade": "alta"}, TriggerContext{RecordID: "2"}))
}

func TestEvaluateTriggers_FirstMatchWins(t *testing.T) {
	def := FormDefinition{
		ID:     "start",
		Fields: []FormField{{ID: "x", Type: FieldText}},
		Triggers: []LinkedFormTrigger{
			{TriggerFieldID: "x", TriggerFieldValue: "never", LinkedFormID: "t1"},
			{TriggerFieldID: "x", TriggerFieldValue: "go", LinkedFormID: "t2"},
			{TriggerFieldID: "x", TriggerFieldValue: "go", LinkedFormID: "t3"},
		},
	}

	nav := EvaluateTriggers(def, map[string]any{"x": "go"}, TriggerContext{RecordID: "9", OsNumber: "OS-1"})
	require.NotNil(t, nav)
	assert.Equal(t, "t2", nav.LinkedFormID)
}

func TestEvaluateTriggers_CarryOverAndOrigin(t *testing.T) {
	rep, _ := Default().Get("rnc-report")

	nav := EvaluateTriggers(rep, map[string]any{
		"ordemServico":           "OS-3",
		"origem":                 "seguranca",
		"responsavelTratativa":   "Ana",
		"necessitaAcaoCorretiva": "S",
	}, TriggerContext{
		RecordID: "20",
		OsNumber: "OS-3",
		Inbound:  map[string]string{"originatingFormId": "11"},
		Chain:    []string{"cronograma-diario-obra"},
	})

	require.NotNil(t, nav)
	assert.Equal(t, "acao-corretiva", nav.LinkedFormID)
	assert.Equal(t, "11", nav.Params["originatingFormId"], "origin is fixed by the first form")
	assert.Equal(t, "OS-3", nav.Params["os"])
	assert.Equal(t, "seguranca", nav.Params["origem"])
	assert.Equal(t, "Ana", nav.Params["responsavel"])
	assert.Equal(t, []string{"cronograma-diario-obra", "rnc-report"}, nav.Chain)
}

func TestEvaluateTriggers_QueryParamSentinel(t *testing.T) {
	acao, _ := Default().Get("acao-corretiva")

	nav := EvaluateTriggers(acao, map[string]any{"ordemServico": "OS-5"}, TriggerContext{
		RecordID: "30",
		OsNumber: "OS-5",
		Inbound:  map[string]string{"origem": "seguranca"},
	})
	require.NotNil(t, nav)
	assert.Equal(t, "inspecao-seguranca", nav.LinkedFormID)
	assert.Equal(t, "OS-5", nav.Params["os"], "falls back to the current work order")

	nav = EvaluateTriggers(acao, map[string]any{"ordemServico": "OS-5", "requerInspecao": true}, TriggerContext{
		RecordID: "31",
		OsNumber: "OS-5",
		Inbound:  map[string]string{"origem": "material"},
	})
	require.NotNil(t, nav)
	assert.Equal(t, "inspecao-qualidade", nav.LinkedFormID)
}

func TestEvaluateTriggers_CycleEndsChain(t *testing.T) {
	a := FormDefinition{
		ID:       "a",
		Fields:   []FormField{{ID: "x", Type: FieldText}},
		Triggers: []LinkedFormTrigger{{TriggerFieldID: "x", TriggerFieldValue: "1", LinkedFormID: "b"}},
	}

	assert.NotNil(t, EvaluateTriggers(a, map[string]any{"x": "1"}, TriggerContext{RecordID: "1"}))
	assert.Nil(t, EvaluateTriggers(a, map[string]any{"x": "1"}, TriggerContext{RecordID: "3", Chain: []string{"b"}}))

	self := a
	self.Triggers = []LinkedFormTrigger{{TriggerFieldID: "x", TriggerFieldValue: "1", LinkedFormID: "a"}}
	assert.Nil(t, EvaluateTriggers(self, map[string]any{"x": "1"}, TriggerContext{RecordID: "1"}))
}

func TestEvaluateTriggers_ChainLengthBound(t *testing.T) {
	a := FormDefinition{
		ID:       "a",
		Fields:   []FormField{{ID: "x", Type: FieldText}},
		Triggers: []LinkedFormTrigger{{TriggerFieldID: "x", TriggerFieldValue: "1", LinkedFormID: "z"}},
	}
	chain := []string{"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9"}
	assert.Nil(t, EvaluateTriggers(a, map[string]any{"x": "1"}, TriggerContext{RecordID: "1", Chain: chain}))
}
