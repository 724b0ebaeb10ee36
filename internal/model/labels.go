package model

import (
	"regexp"
	"strings"

	pkgmodel "github.com/goliatone/go-promptgen/pkg/model"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// KeepLabel returns the label produced by the extractor.
func KeepLabel(field pkgmodel.Field) string {
	return field.Label
}

// HumanizeLabeler rewrites labels of plain tokens into words: `tech_stack`
// and `techStack` both become "Tech Stack". Labels of typed placeholders are
// written by the template author and stay as they are.
func HumanizeLabeler(field pkgmodel.Field) string {
	if field.ID != field.Label && !strings.EqualFold(field.ID, field.Label) {
		return field.Label
	}
	if label := Humanize(field.ID); label != "" {
		return label
	}
	return field.Label
}

// Humanize converts an identifier into a human-friendly label. It splits on
// underscores/dashes and camelCase boundaries.
func Humanize(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	var segments []string
	for _, word := range words {
		if word == "" {
			continue
		}
		segments = append(segments, titleCase(splitCamel(word)))
	}
	return strings.TrimSpace(strings.Join(segments, " "))
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func titleCase(word string) string {
	parts := strings.Fields(word)
	for i, part := range parts {
		lower := strings.ToLower(part)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}
