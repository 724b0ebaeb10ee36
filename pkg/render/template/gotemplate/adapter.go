// Package gotemplate adapts the go-template pongo2 engine to the template
// renderer contract. Form components and server pages are rendered with it.
package gotemplate

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-promptgen/pkg/render/template"
)

const defaultExtension = ".tpl"

// Option configures the Engine before construction.
type Option func(*config)

type config struct {
	baseDir   string
	files     fs.FS
	extension string
	extra     []gotemplatepkg.Option
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files. Names resolve from its root, which is
// also what {% extends %} and {% include %} see.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithExtension sets the suffix appended to template names that lack it.
// Blank values keep the default.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		if ext = strings.TrimSpace(ext); ext != "" {
			cfg.extension = ext
		}
	}
}

// WithGoTemplateOptions passes options straight to the go-template engine,
// for template funcs or global data. They apply after the options above.
func WithGoTemplateOptions(options ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.extra = append(cfg.extra, options...)
	}
}

// Engine renders named templates and inline template strings. Templates
// are compiled once and cached.
type Engine struct {
	*gotemplatepkg.Engine
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. A base directory or a file system is required.
func New(options ...Option) (*Engine, error) {
	cfg := config{extension: defaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.baseDir == "" && cfg.files == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	opts := []gotemplatepkg.Option{
		gotemplatepkg.WithExtension(cfg.extension),
		gotemplatepkg.WithTemplateFunc(map[string]any{
			"lines": pongo2.FilterFunction(filterLines),
		}),
	}
	if cfg.baseDir != "" {
		opts = append(opts, gotemplatepkg.WithBaseDir(cfg.baseDir))
	}
	if cfg.files != nil {
		opts = append(opts, gotemplatepkg.WithFS(cfg.files))
	}
	opts = append(opts, cfg.extra...)

	engine, err := gotemplatepkg.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load templates: %w", err)
	}
	return &Engine{Engine: engine}, nil
}

// RegisterFilter adds a filter. pongo2 filters are process-wide, so a name
// can only be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	return e.Engine.RegisterFilter(name, fn)
}

// filterLines splits text into its lines so list values stored as a single
// string can be iterated. Lists pass through.
func filterLines(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsValue([]string{}), nil
	}
	if in.CanSlice() && !in.IsString() {
		return in, nil
	}
	text := strings.ReplaceAll(in.String(), "\r\n", "\n")
	if text == "" {
		return pongo2.AsValue([]string{}), nil
	}
	return pongo2.AsValue(strings.Split(text, "\n")), nil
}
