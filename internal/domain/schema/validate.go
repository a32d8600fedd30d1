package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DateLayouts are the inputs accepted for date fields, tried in order.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

type FieldError struct {
	FieldID string `json:"fieldId"`
	Message string `json:"message"`
}

// ValidationError collects every field-scoped problem of one submission.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.FieldID+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(fieldID, msg string) {
	e.Fields = append(e.Fields, FieldError{FieldID: fieldID, Message: msg})
}

// Attachments reports how many new files are attached per file field.
type Attachments map[string]int

// Canonicalize returns a copy of values where checkbox, number and select
// entries that coerce cleanly are replaced by their stored form. Entries
// that do not coerce stay raw so validation can report them.
func Canonicalize(def FormDefinition, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, f := range def.Fields {
		raw, present := out[f.ID]
		if !present || isEmpty(raw) {
			continue
		}
		switch f.Type {
		case FieldCheckbox, FieldNumber, FieldSelect:
			if v, msg := coerce(f, raw); msg == "" {
				out[f.ID] = v
			}
		}
	}
	return out
}

// Normalize prunes hidden fields, validates what remains and returns the
// typed payload. Numbers become float64, checkboxes bool, dates RFC3339 in
// UTC. Keys that are not fields of def are dropped. File fields keep only
// already stored descriptors; new uploads are merged in by the caller.
// Visibility is decided on the canonical values, so "on" for a checkbox
// reveals the same fields as true.
func Normalize(def FormDefinition, values map[string]any, attached Attachments) (map[string]any, error) {
	pruned := PruneHiddenFields(def, Canonicalize(def, values))
	out := make(map[string]any, len(pruned))
	verr := &ValidationError{}

	for _, f := range def.Fields {
		if !IsFieldVisible(f, pruned) {
			continue
		}
		raw := pruned[f.ID]

		if f.Type == FieldFile {
			existing := FileDescriptors(raw)
			if f.Required && len(existing)+attached[f.ID] == 0 {
				verr.add(f.ID, "at least one file is required")
				continue
			}
			if len(existing) > 0 {
				out[f.ID] = existing
			}
			continue
		}

		if isEmpty(raw) {
			if f.Required {
				verr.add(f.ID, "is required")
			}
			continue
		}

		v, msg := coerce(f, raw)
		if msg != "" {
			verr.add(f.ID, msg)
			continue
		}
		out[f.ID] = v
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return out, nil
}

func coerce(f FormField, raw any) (any, string) {
	switch f.Type {
	case FieldText, FieldTextarea, FieldPassword:
		s, ok := raw.(string)
		if !ok {
			return nil, "must be text"
		}
		return s, ""
	case FieldEmail:
		s, ok := raw.(string)
		if !ok || validate.Var(s, "email") != nil {
			return nil, "must be a valid email address"
		}
		return s, ""
	case FieldNumber:
		n, ok := toNumber(raw)
		if !ok {
			return nil, "must be a number"
		}
		return n, ""
	case FieldSelect:
		s := ValueString(raw)
		if !f.hasOption(s) {
			return nil, fmt.Sprintf("%q is not one of the available options", s)
		}
		return s, ""
	case FieldCheckbox:
		b, ok := toBool(raw)
		if !ok {
			return nil, "must be true or false"
		}
		return b, ""
	case FieldDate:
		t, ok := ParseDate(raw)
		if !ok {
			return nil, "must be a valid date"
		}
		return t.UTC().Format(time.RFC3339), ""
	}
	return nil, "unsupported field type"
}

// ParseDate accepts a time.Time or a string in one of DateLayouts.
func ParseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range DateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", "."), 64)
		return n, err == nil
	}
	return 0, false
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "sim", "s":
			return true, true
		case "false", "off", "0", "nao", "não", "n":
			return false, true
		}
	}
	return false, false
}

func isEmpty(v any) bool {
	switch vv := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(vv) == ""
	case []any:
		return len(vv) == 0
	case []map[string]any:
		return len(vv) == 0
	}
	return false
}

// FileDescriptors keeps the well-formed {name,url,...} entries of a stored
// file-list value.
func FileDescriptors(raw any) []map[string]any {
	var out []map[string]any
	switch v := raw.(type) {
	case []map[string]any:
		for _, d := range v {
			if url, _ := d["url"].(string); url != "" {
				out = append(out, d)
			}
		}
	case []any:
		for _, item := range v {
			if d, ok := item.(map[string]any); ok {
				if url, _ := d["url"].(string); url != "" {
					out = append(out, d)
				}
			}
		}
	}
	return out
}
