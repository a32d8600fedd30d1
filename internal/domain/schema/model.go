package schema

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPassword FieldType = "password"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldFile     FieldType = "file"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldPassword, FieldNumber, FieldTextarea,
		FieldSelect, FieldCheckbox, FieldDate, FieldFile:
		return true
	}
	return false
}

type Operator string

const (
	OpEquals    Operator = "eq"
	OpNotEquals Operator = "neq"
	OpIn        Operator = "in"
	OpContains  Operator = "contains"
)

// QueryParamPrefix marks a trigger field id that reads an inbound
// carry-over parameter instead of a field of the current form.
const QueryParamPrefix = "query:"

const DefaultOsFieldID = "ordemServico"

type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

type VisibilityCondition struct {
	FieldID        string      `yaml:"fieldId" json:"fieldId"`
	Operator       Operator    `yaml:"operator" json:"operator,omitempty"`
	ConditionValue interface{} `yaml:"conditionValue" json:"conditionValue"`
}

// LinkedForm exposes a shortcut to an already submitted form of another
// type when the field holds ConditionValue.
type LinkedForm struct {
	ConditionValue string `yaml:"conditionValue" json:"conditionValue"`
	FormID         string `yaml:"formId" json:"formId"`
	Label          string `yaml:"label" json:"label,omitempty"`
}

type FormField struct {
	ID                  string               `yaml:"id" json:"id"`
	Label               string               `yaml:"label" json:"label"`
	Type                FieldType            `yaml:"type" json:"type"`
	Placeholder         string               `yaml:"placeholder" json:"placeholder,omitempty"`
	Options             []Option             `yaml:"options" json:"options,omitempty"`
	Required            bool                 `yaml:"required" json:"required,omitempty"`
	DefaultValue        interface{}          `yaml:"defaultValue" json:"defaultValue,omitempty"`
	VisibilityCondition *VisibilityCondition `yaml:"visibilityCondition" json:"visibilityCondition,omitempty"`
	LinkedForm          *LinkedForm          `yaml:"linkedForm" json:"linkedForm,omitempty"`
}

// OptionLabel resolves a select value to its label. Unknown values are
// returned unchanged.
func (f FormField) OptionLabel(value string) string {
	for _, o := range f.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func (f FormField) hasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

type CarryOverParam struct {
	SourceFieldID string `yaml:"sourceFieldId" json:"sourceFieldId"`
	ParamName     string `yaml:"paramName" json:"paramName"`
}

type LinkedFormTrigger struct {
	TriggerFieldID    string           `yaml:"triggerFieldId" json:"triggerFieldId"`
	TriggerFieldValue string           `yaml:"triggerFieldValue" json:"triggerFieldValue"`
	LinkedFormID      string           `yaml:"linkedFormId" json:"linkedFormId"`
	PassOsFieldID     string           `yaml:"passOsFieldId" json:"passOsFieldId,omitempty"`
	CarryOverParams   []CarryOverParam `yaml:"carryOverParams" json:"carryOverParams,omitempty"`
}

type FormDefinition struct {
	ID                 string              `yaml:"id" json:"id"`
	Name               string              `yaml:"name" json:"name"`
	Description        string              `yaml:"description" json:"description,omitempty"`
	OsFieldID          string              `yaml:"osFieldId" json:"osFieldId"`
	ResponsibleFieldID string              `yaml:"responsibleFieldId" json:"responsibleFieldId,omitempty"`
	Fields             []FormField         `yaml:"fields" json:"fields"`
	Triggers           []LinkedFormTrigger `yaml:"linkedFormTriggers" json:"linkedFormTriggers,omitempty"`
}

// Field returns the field with the given id.
func (d FormDefinition) Field(id string) (FormField, bool) {
	for _, f := range d.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FormField{}, false
}

// FieldByLabel returns the first field carrying the given label.
func (d FormDefinition) FieldByLabel(label string) (FormField, bool) {
	for _, f := range d.Fields {
		if f.Label == label {
			return f, true
		}
	}
	return FormField{}, false
}
