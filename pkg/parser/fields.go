package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-promptgen/pkg/model"
)

var (
	fieldHelperPattern = regexp.MustCompile(`\{\{field\s+"([^"]+)"\s+"([^"]+)"\}\}`)
	tokenPattern       = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

	// Matches the Unicode space separators and line terminators too, so labels
	// pasted with non-breaking or typographic spaces map to the same id.
	whitespacePattern = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
)

// ExtractFields scans content for placeholders and returns the fields they
// declare, unique by id. Field helper placeholders come first in the order
// they appear, followed by plain tokens in the order they appear.
func ExtractFields(content string) []model.Field {
	fields := make([]model.Field, 0)
	claimed := make(map[string]struct{})

	for _, match := range fieldHelperPattern.FindAllStringSubmatch(content, -1) {
		label := match[2]
		id := FieldID(label)
		if _, ok := claimed[id]; ok {
			continue
		}
		claimed[id] = struct{}{}
		fields = append(fields, model.Field{
			ID:    id,
			Label: label,
			Type:  model.FieldType(match[1]),
		})
	}

	remaining := fieldHelperPattern.ReplaceAllString(content, "")
	for _, match := range tokenPattern.FindAllStringSubmatch(remaining, -1) {
		name := strings.TrimSpace(match[1])
		if name == "" || strings.HasPrefix(name, "field ") {
			continue
		}
		if _, ok := claimed[name]; ok {
			continue
		}
		claimed[name] = struct{}{}
		fields = append(fields, model.Field{
			ID:    name,
			Label: capitalize(name),
			Type:  model.FieldTypeText,
		})
	}

	return fields
}

// FieldID derives the identifier of a field helper placeholder from its
// label: lower-cased, with every whitespace run collapsed into one hyphen.
func FieldID(label string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(label), "-")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
