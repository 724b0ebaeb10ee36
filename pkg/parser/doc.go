// Package parser turns template text into field descriptors and raw template
// documents into model.Template records.
//
// Two placeholder syntaxes are recognised. The field helper form
//
//	{{field "number" "How many tests?"}}
//
// declares a typed input whose id is derived from the label, while any other
// bracketed token such as {{role}} declares a plain text input named after the
// token. Malformed placeholders never produce errors; they simply yield no
// field.
package parser
