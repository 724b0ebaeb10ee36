package render

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-promptgen/pkg/model"
)

// Validation messages attached to fields.
const (
	MessageNotANumber = "must be a number"
	MessageNotAList   = "must be a list of strings"
)

// HiddenField represents a hidden form input emitted alongside the visible
// fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	clean := make(map[string]string, len(fields))
	for name, value := range fields {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		if _, seen := clean[key]; !seen {
			names = append(names, key)
		}
		clean[key] = value
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}

// DecodeSubmission reads the values of form's fields from a submitted form.
// Text and number fields take the first value; list fields take every
// non-blank value in order. Fields absent from the submission are omitted.
func DecodeSubmission(form model.FormModel, submitted url.Values) map[string]any {
	values := make(map[string]any, len(form.Fields))
	for _, field := range form.Fields {
		raw, ok := submitted[field.ID]
		if !ok {
			continue
		}
		if field.Type.IsList() {
			items := make([]string, 0, len(raw))
			for _, item := range raw {
				if strings.TrimSpace(item) == "" {
					continue
				}
				items = append(items, item)
			}
			values[field.ID] = items
			continue
		}
		if len(raw) > 0 {
			values[field.ID] = raw[0]
		}
	}
	return values
}

// ValidateValues checks values against the field types of form and returns
// messages keyed by field id. Blank values are accepted.
func ValidateValues(form model.FormModel, values map[string]any) map[string][]string {
	errs := make(map[string][]string)
	for _, field := range form.Fields {
		value, ok := values[field.ID]
		if !ok || value == nil {
			continue
		}
		switch {
		case field.Type == model.FieldTypeNumber:
			if !isNumeric(value) {
				errs[field.ID] = append(errs[field.ID], MessageNotANumber)
			}
		case field.Type.IsList():
			if !isStringList(value) {
				errs[field.ID] = append(errs[field.ID], MessageNotAList)
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// NormalizeValues keeps the values of form's fields and converts them to the
// shapes DecodeSubmission produces: strings for text and number fields and
// non-blank string items for list fields. Decoded JSON (float64, []any) is
// accepted. Validate before normalising; unsupported shapes are formatted
// with fmt.
func NormalizeValues(form model.FormModel, values map[string]any) map[string]any {
	out := make(map[string]any, len(form.Fields))
	for _, field := range form.Fields {
		value, ok := values[field.ID]
		if !ok || value == nil {
			continue
		}
		if field.Type.IsList() {
			items := make([]string, 0)
			for _, item := range ListValue(value) {
				if strings.TrimSpace(item) != "" {
					items = append(items, item)
				}
			}
			out[field.ID] = items
			continue
		}
		out[field.ID] = ScalarValue(value)
	}
	return out
}

// ListValue returns the items of a list value, or nil.
func ListValue(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				out = append(out, "")
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if typed == "" {
			return nil
		}
		return []string{typed}
	default:
		return nil
	}
}

// ScalarValue formats a text or number value for an input.
func ScalarValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

func isNumeric(value any) bool {
	switch typed := value.(type) {
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return true
		}
		_, err := strconv.ParseFloat(trimmed, 64)
		return err == nil
	case int, int32, int64, float32, float64, uint, uint32, uint64:
		return true
	default:
		return false
	}
}

func isStringList(value any) bool {
	switch typed := value.(type) {
	case []string, string:
		return true
	case []any:
		for _, item := range typed {
			switch item.(type) {
			case string, float64, nil:
			default:
				return false
			}
		}
		return true
	default:
		return false
	}
}
