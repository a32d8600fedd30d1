package schema

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

const (
	ParamOsNumber          = "os"
	ParamOriginatingFormID = "originatingFormId"
	ParamChain             = "chain"

	// MaxChainLength bounds how many forms one chain may visit.
	MaxChainLength = 10
)

// TriggerContext is what the workflow knows about the submission that was
// just persisted and the chain it belongs to.
type TriggerContext struct {
	RecordID string
	OsNumber string
	// Inbound holds the carry-over parameters the current form was opened with.
	Inbound map[string]string
	// Chain lists the form ids visited before the current one.
	Chain []string
}

// Navigation tells the caller which form to open next.
type Navigation struct {
	LinkedFormID string            `json:"linkedFormId"`
	Params       map[string]string `json:"params"`
	Chain        []string          `json:"chain"`
}

// EvaluateTriggers walks def's triggers in declaration order and returns
// the navigation of the first one whose condition holds. A nil result
// means the chain has ended. A trigger pointing back at a form already
// visited in this chain, or a chain longer than MaxChainLength, also ends
// the chain.
func EvaluateTriggers(def FormDefinition, values map[string]any, tc TriggerContext) *Navigation {
	visited := mapset.NewSet[string](tc.Chain...)
	visited.Add(def.ID)

	for _, t := range def.Triggers {
		if resolveTriggerValue(t.TriggerFieldID, values, tc.Inbound) != t.TriggerFieldValue {
			continue
		}
		if visited.Contains(t.LinkedFormID) || visited.Cardinality() >= MaxChainLength {
			return nil
		}
		return &Navigation{
			LinkedFormID: t.LinkedFormID,
			Params:       nextParams(t, values, tc),
			Chain:        append(append([]string{}, tc.Chain...), def.ID),
		}
	}
	return nil
}

func nextParams(t LinkedFormTrigger, values map[string]any, tc TriggerContext) map[string]string {
	params := make(map[string]string, 2+len(t.CarryOverParams))

	os := tc.OsNumber
	if t.PassOsFieldID != "" {
		if v := ValueString(values[t.PassOsFieldID]); v != "" {
			os = v
		}
	}
	params[ParamOsNumber] = os

	// The originating form is fixed by the first form of the chain.
	origin := tc.Inbound[ParamOriginatingFormID]
	if origin == "" {
		origin = tc.RecordID
	}
	params[ParamOriginatingFormID] = origin

	for _, p := range t.CarryOverParams {
		if v := resolveTriggerValue(p.SourceFieldID, values, tc.Inbound); v != "" {
			params[p.ParamName] = v
		}
	}
	return params
}

func resolveTriggerValue(fieldID string, values map[string]any, inbound map[string]string) string {
	if name, ok := strings.CutPrefix(fieldID, QueryParamPrefix); ok {
		return inbound[name]
	}
	return ValueString(values[fieldID])
}
