package catalog

import (
	"log/slog"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-promptgen/pkg/gist"
	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/store"
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithLoader sets the loader used to fetch built-in documents.
func WithLoader(loader Loader) Option {
	return func(c *Catalog) {
		if loader != nil {
			c.loader = loader
		}
	}
}

// WithResolver sets how manifest entries map to sources.
func WithResolver(resolver Resolver) Option {
	return func(c *Catalog) {
		if resolver != nil {
			c.resolve = resolver
		}
	}
}

// WithDirectory reads built-in documents from dir and enables Watch.
func WithDirectory(dir string) Option {
	return func(c *Catalog) {
		if dir == "" {
			return
		}
		c.resolve = DirectoryResolver(dir)
		c.watchDir = dir
	}
}

// WithManifest replaces the list of built-in documents.
func WithManifest(names ...string) Option {
	return func(c *Catalog) {
		if len(names) > 0 {
			c.manifest = append([]string(nil), names...)
		}
	}
}

// WithPreferences sets where custom templates are persisted.
func WithPreferences(prefs *store.Preferences) Option {
	return func(c *Catalog) {
		if prefs != nil {
			c.prefs = prefs
		}
	}
}

// WithGistFetcher enables resolving Gist links pasted as template content.
func WithGistFetcher(fetcher gist.Fetcher) Option {
	return func(c *Catalog) {
		c.gist = fetcher
	}
}

// WithLogger sets the logger for load and watch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator overrides how custom template ids are minted. The generator
// returns the part after the custom- prefix.
func WithIDGenerator(next func() string) Option {
	return func(c *Catalog) {
		if next != nil {
			c.nextID = next
		}
	}
}

// WithNamePolicy overrides the sanitiser applied to custom template names.
func WithNamePolicy(policy *bluemonday.Policy) Option {
	return func(c *Catalog) {
		if policy != nil {
			c.namePolicy = policy
		}
	}
}

// WithReloadHook registers fn to run after Watch reloads the built-ins.
func WithReloadHook(fn func([]model.Template)) Option {
	return func(c *Catalog) {
		if fn != nil {
			c.onReload = append(c.onReload, fn)
		}
	}
}
