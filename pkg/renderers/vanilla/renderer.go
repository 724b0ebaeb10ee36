package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/render"
	rendertemplate "github.com/goliatone/go-promptgen/pkg/render/template"
	gotemplate "github.com/goliatone/go-promptgen/pkg/render/template/gotemplate"
	"github.com/goliatone/go-promptgen/pkg/renderers/vanilla/components"
)

// Name identifies the renderer inside a render.Registry.
const Name = "vanilla"

// PartialForm is the theme partial key that replaces the form template.
const PartialForm = "forms.form"

const formTemplate = "templates/form.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	overrides        map[model.FieldType]string
	inlineStyles     bool
	stylesheets      []string
	assetURL         func(string) string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithComponent renders every field of fieldType with the named component.
func WithComponent(fieldType model.FieldType, name string) Option {
	return func(cfg *config) {
		if cfg.overrides == nil {
			cfg.overrides = make(map[model.FieldType]string)
		}
		cfg.overrides[fieldType] = name
	}
}

// WithDefaultStyles inlines the bundled stylesheet into every rendered form.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// WithStylesheet links an external stylesheet from the rendered form.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// WithAssetURL resolves bundled asset names (scripts) into URLs. A theme's
// AssetURL takes precedence at render time.
func WithAssetURL(resolve func(string) string) Option {
	return func(cfg *config) {
		if resolve != nil {
			cfg.assetURL = resolve
		}
	}
}

// DefaultAssetURL serves bundled assets from /assets/.
func DefaultAssetURL(name string) string {
	return "/assets/" + strings.TrimPrefix(name, "/")
}

type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *components.Registry
	overrides    map[model.FieldType]string
	inlineStyles bool
	stylesheets  []string
	assetURL     func(string) string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), assetURL: DefaultAssetURL}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:    renderer,
		registry:     cfg.registry,
		overrides:    cfg.overrides,
		inlineStyles: cfg.inlineStyles,
		stylesheets:  cfg.stylesheets,
		assetURL:     cfg.assetURL,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the HTML form for form. Values prefill the inputs, Errors
// annotate fields, and Prompt or PromptError fill the output region.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	classes := defaultClasses()
	partials := themePartials(options.Theme)

	fields, used, err := r.renderFields(form, options, classes, partials)
	if err != nil {
		return nil, err
	}

	stylesheets, scripts := r.registry.Assets(used)
	stylesheets = append(append([]string{}, r.stylesheets...), stylesheets...)

	resolve := r.assetURL
	if options.Theme != nil && options.Theme.AssetURL != nil {
		resolve = options.Theme.AssetURL
	}

	data := map[string]any{
		"form":         form,
		"classes":      toAnyMap(classes),
		"fields":       fields,
		"formErrors":   toAnySlice(options.FormErrors),
		"hiddenFields": hiddenFieldsView(options.HiddenFields),
		"inlineStyles": r.inlineCSS(options),
		"stylesheets":  toAnySlice(stylesheets),
		"scripts":      scriptsView(scripts, resolve),
		"prompt":       options.Prompt,
		"promptError":  options.PromptError,
	}

	templateName := formTemplate
	if candidate := strings.TrimSpace(partials[PartialForm]); candidate != "" {
		templateName = candidate
	}

	result, err := r.templates.RenderTemplate(templateName, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) inlineCSS(options render.RenderOptions) string {
	var parts []string
	if vars := cssVarsStyle(options.Theme); vars != "" {
		parts = append(parts, vars)
	}
	if r.inlineStyles {
		if css := strings.TrimSpace(defaultStylesheet()); css != "" {
			parts = append(parts, css)
		}
	}
	return strings.Join(parts, "\n")
}
