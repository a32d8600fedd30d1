// Package export turns stored submissions into label/value pairs and
// renders them as PDF documents and spreadsheets.
package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/linskybing/fieldreport-go/internal/domain/schema"
)

const (
	DateLayout   = "02/01/2006 15:04"
	Yes          = "Sim"
	No           = "Não"
	maskedSecret = "********"
)

// Location is the zone dates are rendered in.
var Location = time.UTC

type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type LabeledValue struct {
	FieldID string           `json:"field_id,omitempty"`
	Label   string           `json:"label"`
	Type    schema.FieldType `json:"type,omitempty"`
	Value   string           `json:"value"`
	Links   []Link           `json:"links,omitempty"`
}

// FieldValues lists the visible fields of def in declaration order with
// their formatted values. Fields without a value are kept with an empty
// Value so documents show the full form.
func FieldValues(def schema.FormDefinition, data map[string]any) []LabeledValue {
	out := make([]LabeledValue, 0, len(def.Fields))
	for _, f := range schema.VisibleFields(def, data) {
		lv := LabeledValue{FieldID: f.ID, Label: f.Label, Type: f.Type}
		if raw, ok := data[f.ID]; ok && raw != nil {
			lv.Value, lv.Links = formatValue(f, raw)
		}
		out = append(out, lv)
	}
	return out
}

// RawValues renders data whose form type is no longer registered: keys in
// lexical order, values as plain strings.
func RawValues(data map[string]any) []LabeledValue {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]LabeledValue, 0, len(keys))
	for _, k := range keys {
		lv := LabeledValue{FieldID: k, Label: k}
		if files := schema.FileDescriptors(data[k]); len(files) > 0 {
			lv.Value, lv.Links = formatFiles(files)
		} else {
			lv.Value = schema.ValueString(data[k])
		}
		out = append(out, lv)
	}
	return out
}

func formatValue(f schema.FormField, raw any) (string, []Link) {
	switch f.Type {
	case schema.FieldSelect:
		return f.OptionLabel(schema.ValueString(raw)), nil
	case schema.FieldCheckbox:
		if b, ok := raw.(bool); ok {
			if b {
				return Yes, nil
			}
			return No, nil
		}
		return schema.ValueString(raw), nil
	case schema.FieldDate:
		if t, ok := schema.ParseDate(raw); ok {
			return t.In(Location).Format(DateLayout), nil
		}
		return schema.ValueString(raw), nil
	case schema.FieldFile:
		return formatFiles(schema.FileDescriptors(raw))
	case schema.FieldPassword:
		return maskedSecret, nil
	}
	return schema.ValueString(raw), nil
}

func formatFiles(files []map[string]any) (string, []Link) {
	if len(files) == 0 {
		return "", nil
	}
	links := make([]Link, 0, len(files))
	for _, d := range files {
		name, _ := d["name"].(string)
		url, _ := d["url"].(string)
		links = append(links, Link{Name: name, URL: url})
	}
	return fmt.Sprintf("%d arquivo(s)", len(files)), links
}

// ParseFieldValues maps rendered pairs back onto field ids by label and
// restores the stored representation of each value. Labels unknown to def
// and empty values are skipped, as are password fields, which are never
// rendered in clear.
func ParseFieldValues(def schema.FormDefinition, pairs []LabeledValue) map[string]any {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		f, ok := def.FieldByLabel(p.Label)
		if !ok || f.Type == schema.FieldPassword {
			continue
		}
		if strings.TrimSpace(p.Value) == "" && len(p.Links) == 0 {
			continue
		}
		if v, ok := parseValue(f, p); ok {
			out[f.ID] = v
		}
	}
	return out
}

func parseValue(f schema.FormField, p LabeledValue) (any, bool) {
	switch f.Type {
	case schema.FieldNumber:
		n, err := strconv.ParseFloat(p.Value, 64)
		return n, err == nil
	case schema.FieldSelect:
		for _, o := range f.Options {
			if o.Label == p.Value {
				return o.Value, true
			}
		}
		return nil, false
	case schema.FieldCheckbox:
		switch p.Value {
		case Yes:
			return true, true
		case No:
			return false, true
		}
		return nil, false
	case schema.FieldDate:
		t, err := time.ParseInLocation(DateLayout, p.Value, Location)
		if err != nil {
			return nil, false
		}
		return t.UTC().Format(time.RFC3339), true
	case schema.FieldFile:
		if len(p.Links) == 0 {
			return nil, false
		}
		files := make([]map[string]any, 0, len(p.Links))
		for _, l := range p.Links {
			files = append(files, map[string]any{"name": l.Name, "url": l.URL})
		}
		return files, true
	}
	return p.Value, true
}
