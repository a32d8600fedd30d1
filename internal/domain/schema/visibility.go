package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// IsFieldVisible evaluates the field's declarative visibility condition
// against the current values. Fields without a condition are always visible.
func IsFieldVisible(field FormField, values map[string]any) bool {
	c := field.VisibilityCondition
	if c == nil {
		return true
	}
	current := values[c.FieldID]

	switch c.Operator {
	case OpNotEquals:
		return ValueString(current) != ValueString(c.ConditionValue)
	case OpIn:
		needle := ValueString(current)
		for _, candidate := range conditionList(c.ConditionValue) {
			if candidate == needle {
				return true
			}
		}
		return false
	case OpContains:
		want := ValueString(c.ConditionValue)
		if list, ok := current.([]any); ok {
			for _, item := range list {
				if ValueString(item) == want {
					return true
				}
			}
			return false
		}
		return strings.Contains(ValueString(current), want)
	default:
		return ValueString(current) == ValueString(c.ConditionValue)
	}
}

// VisibleFields returns the fields of def that are visible for values, in
// declaration order.
func VisibleFields(def FormDefinition, values map[string]any) []FormField {
	out := make([]FormField, 0, len(def.Fields))
	for _, f := range def.Fields {
		if IsFieldVisible(f, values) {
			out = append(out, f)
		}
	}
	return out
}

// PruneHiddenFields returns a copy of values without the entries of hidden
// fields. Clearing a field may hide fields that depend on it, so the pass
// repeats until nothing changes.
func PruneHiddenFields(def FormDefinition, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}

	for pass := 0; pass <= len(def.Fields); pass++ {
		changed := false
		for _, f := range def.Fields {
			if _, present := out[f.ID]; !present {
				continue
			}
			if !IsFieldVisible(f, out) {
				delete(out, f.ID)
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return out
}

func conditionList(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			out = append(out, ValueString(item))
		}
		return out
	default:
		return []string{ValueString(v)}
	}
}

// ValueString maps a JSON or YAML scalar onto the string form used by
// every comparison. Missing values compare as "".
func ValueString(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case bool:
		return strconv.FormatBool(vv)
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(vv), 'f', -1, 32)
	case int:
		return strconv.Itoa(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	default:
		return fmt.Sprint(vv)
	}
}
