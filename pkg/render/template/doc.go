// Package template defines the engine contract the HTML renderers and page
// handlers render through. The gotemplate subpackage provides the pongo2
// backed implementation.
package template
