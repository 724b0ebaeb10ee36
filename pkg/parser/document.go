package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-promptgen/pkg/model"
)

// Delimiter separates the metadata header of a template document from its
// body.
const Delimiter = "---\n"

// ErrMissingName is returned when a document header carries no name line.
var ErrMissingName = errors.New("parser: missing name in template header")

var nameLinePattern = regexp.MustCompile(`name:\s*(.+)`)

// headerExtras holds optional metadata decoded from the header when it also
// happens to be valid YAML.
type headerExtras struct {
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// ParseDocument splits raw document text into a metadata header and a body,
// reads the display name from the header and returns the template record.
// The template id is the filename without its .md extension.
func ParseDocument(content, filename string) (model.Template, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")

	segments := make([]string, 0, 2)
	for _, segment := range strings.Split(normalized, Delimiter) {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	var header string
	if len(segments) > 0 {
		header = segments[0]
	}

	match := nameLinePattern.FindStringSubmatch(header)
	if match == nil || strings.TrimSpace(match[1]) == "" {
		return model.Template{}, fmt.Errorf("%w: %s", ErrMissingName, filename)
	}

	var body string
	if len(segments) > 1 {
		body = strings.TrimSpace(strings.Join(segments[1:], Delimiter))
	}

	tpl := model.Template{
		ID:      TemplateID(filename),
		Name:    strings.TrimSpace(match[1]),
		Content: body,
	}

	var extras headerExtras
	if err := yaml.Unmarshal([]byte(header), &extras); err == nil {
		tpl.Description = strings.TrimSpace(extras.Description)
		tpl.Tags = extras.Tags
	}

	return tpl, nil
}

// TemplateID derives a template id from a document filename.
func TemplateID(filename string) string {
	return strings.Replace(filename, ".md", "", 1)
}
