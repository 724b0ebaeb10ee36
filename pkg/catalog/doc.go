// Package catalog assembles the templates users pick from: built-in documents
// loaded from a source (embedded files, a directory, an HTTP base URL or an S3
// prefix) followed by custom templates kept in the store. When a built-in
// document cannot be loaded the catalog keeps what it has and falls back to the
// hardcoded default template.
package catalog
