package catalog

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-promptgen/pkg/gist"
	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/parser"
	"github.com/goliatone/go-promptgen/pkg/store"
)

var (
	// ErrTemplateNotFound is returned when no template matches an id.
	ErrTemplateNotFound = errors.New("catalog: template not found")
	// ErrNameRequired is returned when a custom template has a blank name.
	ErrNameRequired = errors.New("catalog: template name is required")
	// ErrContentRequired is returned when a custom template has blank content.
	ErrContentRequired = errors.New("catalog: template content is required")
	// ErrWatchUnsupported is returned by Watch for sources that are not a
	// local directory.
	ErrWatchUnsupported = errors.New("catalog: watch requires a directory source")
	// ErrGistUnavailable is returned when content links a Gist but no fetcher
	// is configured.
	ErrGistUnavailable = errors.New("catalog: gist import is not configured")
)

// settleDelay gives editors time to finish writing before documents are
// re-read.
const settleDelay = 50 * time.Millisecond

// Catalog lists built-in and custom templates.
type Catalog struct {
	loader     Loader
	resolve    Resolver
	manifest   []string
	prefs      *store.Preferences
	gist       gist.Fetcher
	logger     *slog.Logger
	nextID     func() string
	namePolicy *bluemonday.Policy
	watchDir   string
	onReload   []func([]model.Template)

	mu       sync.RWMutex
	builtins []model.Template
	loaded   bool
	loadErr  error

	customMu sync.Mutex
}

// New constructs a Catalog. Without options it serves the embedded built-ins
// and keeps custom templates in memory.
func New(options ...Option) *Catalog {
	c := &Catalog{
		loader:     embeddedLoader(),
		resolve:    EmbeddedResolver(),
		manifest:   append([]string(nil), DefaultManifest...),
		logger:     slog.Default(),
		nextID:     func() string { return ulid.Make().String() },
		namePolicy: bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.prefs == nil {
		c.prefs = store.NewPreferences(nil)
	}
	return c
}

// Load fetches and parses the built-in documents in manifest order. The first
// failure stops loading; the templates read so far are kept and the default
// template is appended. Load never fails; Degraded reports the failure.
func (c *Catalog) Load(ctx context.Context) []model.Template {
	templates := make([]model.Template, 0, len(c.manifest)+1)
	var loadErr error

	for _, name := range c.manifest {
		tpl, err := c.loadOne(ctx, name)
		if err != nil {
			loadErr = err
			break
		}
		templates = append(templates, tpl)
	}

	if loadErr != nil {
		c.logger.Error("catalog: error loading templates", "error", loadErr)
		if !containsID(templates, DefaultTemplateID) {
			templates = append(templates, DefaultTemplate())
		}
	}

	c.mu.Lock()
	c.builtins = templates
	c.loaded = true
	c.loadErr = loadErr
	c.mu.Unlock()

	c.logger.Debug("catalog: templates loaded", "count", len(templates))
	return cloneTemplates(templates)
}

func (c *Catalog) loadOne(ctx context.Context, name string) (model.Template, error) {
	src := c.resolve(name)
	data, err := c.loader.Load(ctx, src)
	if err != nil {
		return model.Template{}, fmt.Errorf("catalog: failed to load template %s: %w", name, err)
	}
	tpl, err := parser.ParseDocument(string(data), name)
	if err != nil {
		return model.Template{}, fmt.Errorf("catalog: parse %s: %w", name, err)
	}
	return tpl, nil
}

// Degraded returns the error that forced the fallback during the last Load,
// or nil.
func (c *Catalog) Degraded() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// Builtins returns the built-in templates, loading them on first use.
func (c *Catalog) Builtins(ctx context.Context) []model.Template {
	c.mu.RLock()
	if c.loaded {
		out := cloneTemplates(c.builtins)
		c.mu.RUnlock()
		return out
	}
	c.mu.RUnlock()
	return c.Load(ctx)
}

// Custom returns the custom templates in creation order.
func (c *Catalog) Custom(ctx context.Context) ([]model.Template, error) {
	templates, err := c.prefs.CustomTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: read custom templates: %w", err)
	}
	return templates, nil
}

// List returns the built-in templates followed by the custom ones.
func (c *Catalog) List(ctx context.Context) ([]model.Template, error) {
	builtins := c.Builtins(ctx)
	custom, err := c.Custom(ctx)
	if err != nil {
		return nil, err
	}
	return append(builtins, custom...), nil
}

// Find returns the template with the provided id.
func (c *Catalog) Find(ctx context.Context, id string) (model.Template, error) {
	templates, err := c.List(ctx)
	if err != nil {
		return model.Template{}, err
	}
	for _, tpl := range templates {
		if tpl.ID == id {
			return tpl, nil
		}
	}
	return model.Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

// Search returns the templates whose name contains query, ignoring case. An
// empty query matches everything.
func (c *Catalog) Search(ctx context.Context, query string) ([]model.Template, error) {
	templates, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(templates, query), nil
}

// Filter keeps the templates whose name contains query, ignoring case.
func Filter(templates []model.Template, query string) []model.Template {
	needle := strings.ToLower(query)
	out := make([]model.Template, 0, len(templates))
	for _, tpl := range templates {
		if strings.Contains(strings.ToLower(tpl.Name), needle) {
			out = append(out, tpl)
		}
	}
	return out
}

// maxNamePasses bounds how many entity-encoding layers sanitizeName peels.
const maxNamePasses = 8

// sanitizeName strips markup from a template name and decodes entities. The
// two steps repeat until the name is stable so encoded tags cannot survive as
// live markup.
func (c *Catalog) sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	for range maxNamePasses {
		next := strings.TrimSpace(html.UnescapeString(c.namePolicy.Sanitize(name)))
		if next == name {
			return name
		}
		name = next
	}
	return strings.TrimSpace(c.namePolicy.Sanitize(name))
}

// AddCustom validates and persists a user-created template. Content that links
// a Gist is replaced with the Gist's first file.
func (c *Catalog) AddCustom(ctx context.Context, name, content string) (model.Template, error) {
	name = c.sanitizeName(name)
	if name == "" {
		return model.Template{}, ErrNameRequired
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Template{}, ErrContentRequired
	}

	if gist.IsGistURL(content) {
		if c.gist == nil {
			return model.Template{}, ErrGistUnavailable
		}
		fetched, err := c.gist.Fetch(ctx, content)
		if err != nil {
			return model.Template{}, fmt.Errorf("catalog: import gist: %w", err)
		}
		content = fetched
		if strings.TrimSpace(content) == "" {
			return model.Template{}, ErrContentRequired
		}
	}

	tpl := model.Template{
		ID:      model.CustomTemplatePrefix + c.nextID(),
		Name:    name,
		Content: content,
		Custom:  true,
	}

	c.customMu.Lock()
	defer c.customMu.Unlock()

	custom, err := c.Custom(ctx)
	if err != nil {
		return model.Template{}, err
	}
	custom = append(custom, tpl)
	if err := c.prefs.SaveCustomTemplates(ctx, custom); err != nil {
		return model.Template{}, fmt.Errorf("catalog: save custom templates: %w", err)
	}
	c.logger.Info("catalog: custom template added", "id", tpl.ID, "fields", len(parser.ExtractFields(content)))
	return tpl, nil
}

// DeleteCustom removes a custom template.
func (c *Catalog) DeleteCustom(ctx context.Context, id string) error {
	c.customMu.Lock()
	defer c.customMu.Unlock()

	custom, err := c.Custom(ctx)
	if err != nil {
		return err
	}
	kept := make([]model.Template, 0, len(custom))
	for _, tpl := range custom {
		if tpl.ID != id {
			kept = append(kept, tpl)
		}
	}
	if len(kept) == len(custom) {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if err := c.prefs.SaveCustomTemplates(ctx, kept); err != nil {
		return fmt.Errorf("catalog: save custom templates: %w", err)
	}
	c.logger.Info("catalog: custom template deleted", "id", id)
	return nil
}

// Watch reloads the built-ins whenever a manifest document changes in the
// directory source. It blocks until ctx is cancelled.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.watchDir == "" {
		return ErrWatchUnsupported
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: cannot initialize filesystem watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()
	if err := watcher.Add(c.watchDir); err != nil {
		return fmt.Errorf("catalog: cannot setup filesystem watch on %s: %w", c.watchDir, err)
	}

	watched := make(map[string]struct{}, len(c.manifest))
	for _, name := range c.manifest {
		watched[name] = struct{}{}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, ok := watched[filepath.Base(event.Name)]; !ok {
				continue
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			time.Sleep(settleDelay)
			templates := c.Load(ctx)
			c.logger.Info("catalog: templates reloaded", "trigger", event.Name, "count", len(templates))
			for _, hook := range c.onReload {
				hook(templates)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("catalog: watcher error", "error", err)
		}
	}
}

func containsID(templates []model.Template, id string) bool {
	for _, tpl := range templates {
		if tpl.ID == id {
			return true
		}
	}
	return false
}

func cloneTemplates(templates []model.Template) []model.Template {
	out := make([]model.Template, len(templates))
	copy(out, templates)
	return out
}
