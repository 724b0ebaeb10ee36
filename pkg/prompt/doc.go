// Package prompt renders a template and a set of field values into the final
// prompt text. Substitution is delegated to a Handlebars engine
// (github.com/aymerick/raymond); this package only wires the field helper and
// the value conventions used by the form renderers.
package prompt
