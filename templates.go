package promptgen

import (
	"io/fs"

	"github.com/goliatone/go-promptgen/pkg/catalog"
	vanilla "github.com/goliatone/go-promptgen/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// BuiltinPrompts exposes the prompt templates shipped with the catalog.
func BuiltinPrompts() fs.FS {
	sub, err := fs.Sub(catalog.Builtin, catalog.BuiltinDir)
	if err != nil {
		return catalog.Builtin
	}
	return sub
}
