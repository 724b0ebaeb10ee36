// Package model defines the types shared by the parser, the catalog and the
// renderers: Field descriptors extracted from template text, Template records
// loaded from documents or created at runtime, and the FormModel renderers
// consume. Builders live in internal/model and return the types defined here.
package model
