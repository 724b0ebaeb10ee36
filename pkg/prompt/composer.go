package prompt

import (
	"fmt"
	"strings"

	"github.com/aymerick/raymond"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/parser"
)

// FieldHelper is the name of the helper typed placeholders call.
const FieldHelper = "field"

// ListSeparator joins the items of a list value.
const ListSeparator = "\n"

// ErrorMessage is shown in place of a prompt when rendering fails.
const ErrorMessage = "Error generating prompt. Please check the template and values."

// Option configures a Composer.
type Option func(*Composer)

// WithHTMLEscape toggles HTML escaping of substituted values. Escaping is on
// by default, matching Handlebars.
func WithHTMLEscape(enabled bool) Option {
	return func(c *Composer) {
		c.escape = enabled
	}
}

// Composer renders template content with user supplied values.
type Composer struct {
	escape bool
}

// New constructs a Composer.
func New(options ...Option) *Composer {
	c := &Composer{escape: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Compose parses content as a Handlebars template and executes it against
// values. Typed placeholders resolve through the field helper, which looks up
// the value stored under the id derived from the label.
func (c *Composer) Compose(content string, values map[string]any) (string, error) {
	tpl, err := raymond.Parse(content)
	if err != nil {
		return "", fmt.Errorf("prompt: parse template: %w", err)
	}

	if c.escape {
		tpl.RegisterHelper(FieldHelper, func(fieldType, label string) string {
			return resolveField(values, fieldType, label)
		})
	} else {
		tpl.RegisterHelper(FieldHelper, func(fieldType, label string) raymond.SafeString {
			return raymond.SafeString(resolveField(values, fieldType, label))
		})
	}

	ctx := values
	if !c.escape {
		ctx = markSafe(values)
	}
	if ctx == nil {
		ctx = map[string]any{}
	}

	out, err := tpl.Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("prompt: execute template: %w", err)
	}
	return out, nil
}

// Compose renders content with a default Composer.
func Compose(content string, values map[string]any) (string, error) {
	return New().Compose(content, values)
}

func resolveField(values map[string]any, fieldType, label string) string {
	value, ok := values[parser.FieldID(label)]
	if !ok || value == nil {
		return ""
	}
	if model.FieldType(fieldType).IsList() {
		if items, ok := listItems(value); ok {
			return strings.Join(items, ListSeparator)
		}
	}
	return stringify(value)
}

func listItems(value any) ([]string, bool) {
	switch typed := value.(type) {
	case []string:
		return typed, true
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, stringify(item))
		}
		return out, true
	default:
		return nil, false
	}
}

func stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case raymond.SafeString:
		return string(typed)
	case bool:
		if !typed {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(typed)
	}
}

func markSafe(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		switch typed := value.(type) {
		case string:
			out[key] = raymond.SafeString(typed)
		case []string:
			items := make([]any, len(typed))
			for i, item := range typed {
				items[i] = raymond.SafeString(item)
			}
			out[key] = items
		case []any:
			items := make([]any, len(typed))
			for i, item := range typed {
				if s, ok := item.(string); ok {
					items[i] = raymond.SafeString(s)
					continue
				}
				items[i] = item
			}
			out[key] = items
		default:
			out[key] = value
		}
	}
	return out
}
