package model

import "strings"

// FieldType is the closed set of input kinds a placeholder can request.
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeNumber    FieldType = "number"
	FieldTypeTextArray FieldType = "text array"
)

// IsList reports whether the field collects a list of values.
func (t FieldType) IsList() bool {
	return t == FieldTypeTextArray
}

// Field is one named input slot extracted from a template. ID is unique within
// a single extraction pass.
type Field struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Type  FieldType `json:"type"`
}

// Template is a named document containing placeholder tokens. Records are
// treated as immutable once loaded.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Custom      bool     `json:"custom,omitempty"`
}

// CustomTemplatePrefix marks ids of templates created at runtime.
const CustomTemplatePrefix = "custom-"

// IsCustomID reports whether id belongs to a user-created template.
func IsCustomID(id string) bool {
	return strings.HasPrefix(id, CustomTemplatePrefix)
}

// FormModel is the renderer input derived from a Template.
type FormModel struct {
	TemplateID   string            `json:"templateId"`
	TemplateName string            `json:"templateName"`
	Description  string            `json:"description,omitempty"`
	Action       string            `json:"action,omitempty"`
	Method       string            `json:"method,omitempty"`
	Fields       []Field           `json:"fields"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Field returns the field with the provided id.
func (f FormModel) Field(id string) (Field, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}
