package render

import (
	"strings"

	"github.com/goliatone/go-promptgen/pkg/model"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages keyed by field id.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises an error payload into field ids. Keys may be bare
// ids, JSON pointers (/values/role) or dotted paths (values.role). Unknown keys
// become form-level errors so messages are not lost.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		known[field.ID] = struct{}{}
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		id, ok := matchFieldID(rawPath, known)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[id] = append(mapping.Fields[id], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func matchFieldID(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if _, ok := known[trimmed]; ok {
		return trimmed, true
	}

	clean := strings.TrimLeft(trimmed, "#/$.")
	for _, prefix := range []string{"body/", "values/", "body.", "values."} {
		clean = strings.TrimPrefix(clean, prefix)
	}
	clean = strings.ReplaceAll(clean, "~1", "/")
	clean = strings.ReplaceAll(clean, "~0", "~")
	if _, ok := known[clean]; ok {
		return clean, true
	}

	// list items: examples/0 or examples[0]
	for _, sep := range []string{"/", "["} {
		if head, _, found := strings.Cut(clean, sep); found {
			if _, ok := known[head]; ok {
				return head, true
			}
		}
	}
	return "", false
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
