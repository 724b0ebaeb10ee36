package catalog

import (
	"context"
	"embed"
	"errors"
	"io/fs"

	"github.com/goliatone/go-promptgen/pkg/model"
)

// BuiltinDir is the directory inside Builtin holding the template documents.
const BuiltinDir = "templates"

// Builtin holds the template documents shipped with the binary.
//
//go:embed templates/*.md
var Builtin embed.FS

// DefaultManifest lists the built-in documents in load order.
var DefaultManifest = []string{"default.md", "code-review.md", "bug-report.md"}

// DefaultTemplateID is the id of the fallback template.
const DefaultTemplateID = "default"

const defaultTemplateContent = `As a {{role}} create {{task}} using {{technologies}}.
Prepare {{field "number" "How many tests?"}} test cases.
Examples:
{{field "text array" "Examples"}}`

// DefaultTemplate returns the template used when built-ins cannot be loaded.
func DefaultTemplate() model.Template {
	return model.Template{
		ID:      DefaultTemplateID,
		Name:    "Default Template",
		Content: defaultTemplateContent,
	}
}

// embeddedLoader serves SourceKindFS entries from Builtin. Catalogs use it when
// no Loader is configured.
func embeddedLoader() Loader {
	return LoaderFunc(func(ctx context.Context, src Source) ([]byte, error) {
		if src == nil || src.Kind() != SourceKindFS {
			return nil, errors.New("catalog: embedded loader only serves fs sources")
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fs.ReadFile(Builtin, src.Location())
	})
}
