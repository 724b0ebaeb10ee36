// Package store persists small key-value documents: custom templates, the
// selected template and per-template form state. Drivers cover process memory,
// a JSON file, Redis and Postgres; Preferences layers the typed keys on top of
// any of them.
package store
