package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	internalmodel "github.com/goliatone/go-promptgen/internal/model"
	"github.com/goliatone/go-promptgen/pkg/catalog"
	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/prompt"
	"github.com/goliatone/go-promptgen/pkg/render"
	"github.com/goliatone/go-promptgen/pkg/renderers/vanilla"
	theme "github.com/goliatone/go-theme"
)

const (
	defaultRendererName = vanilla.Name
	tracerName          = "github.com/goliatone/go-promptgen/pkg/orchestrator"
)

// TemplateFinder resolves templates by id. *catalog.Catalog satisfies it.
type TemplateFinder interface {
	Find(ctx context.Context, id string) (model.Template, error)
}

// Composer renders template content with submitted values. *prompt.Composer
// satisfies it.
type Composer interface {
	Compose(content string, values map[string]any) (string, error)
}

// FormAction is the default form action: the HTML page of the template.
func FormAction(tpl model.Template) string {
	return "/t/" + url.PathEscape(tpl.ID)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithTemplates injects the template source, typically a *catalog.Catalog.
func WithTemplates(finder TemplateFinder) Option {
	return func(o *Orchestrator) {
		o.templates = finder
	}
}

// WithModelBuilder injects a custom form model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithComposer injects the prompt composer.
func WithComposer(composer Composer) Option {
	return func(o *Orchestrator) {
		o.composer = composer
	}
}

// WithHTMLEscape controls HTML escaping of values in composed prompts when
// the default composer is used. Escaping is on unless disabled here.
func WithHTMLEscape(enabled bool) Option {
	return func(o *Orchestrator) {
		o.plainText = !enabled
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that can mutate form models after
// building but before decorators run.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that run against the generated form
// model before rendering.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithThemeSelector replaces the built-in theme selector. Passing nil disables
// theming; renderers then receive a nil theme config.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
		o.themeSpecified = true
	}
}

// WithThemeFallbacks overrides the partials used when a theme does not name
// its own.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = fallbacks
	}
}

// WithTracer overrides the OpenTelemetry tracer. The global provider is used
// by default.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithComposeObserver registers fn to be told about every prompt composition
// and its outcome.
func WithComposeObserver(fn func(templateID string, err error)) Option {
	return func(o *Orchestrator) {
		o.composeObserver = fn
	}
}

// WithLogger sets the logger used for degraded paths such as failed prompt
// composition.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the full pipeline from template id to rendered
// output. It applies sensible defaults (embedded catalog, vanilla renderer,
// built-in theme) while remaining open to dependency injection.
type Orchestrator struct {
	templates       TemplateFinder
	builder         model.Builder
	composer        Composer
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	decorators      []model.Decorator
	themeSelector   theme.ThemeSelector
	themeSpecified  bool
	themeFallbacks  map[string]string
	tracer          trace.Tracer
	logger          *slog.Logger
	composeObserver func(string, error)
	plainText       bool
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers can
// start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to render a form for a template.
type Request struct {
	// TemplateID selects a template from the configured catalog. Optional when
	// Template is supplied.
	TemplateID string

	// Template bypasses the catalog lookup.
	Template *model.Template

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// Values prefill the form and, with Compose, feed the prompt.
	Values map[string]any

	// Errors annotate fields; FormErrors are shown above the form.
	Errors     map[string][]string
	FormErrors []string

	// Hidden fields are emitted as hidden inputs (CSRF token).
	Hidden map[string]string

	// ThemeName and ThemeVariant select the theme; blank values use defaults.
	ThemeName    string
	ThemeVariant string

	// Compose renders the prompt from Values when there are no field errors.
	Compose bool
}

// Generate resolves the template, builds the form model, optionally composes
// the prompt, and renders the result with the selected renderer.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	ctx, span := o.tracer.Start(ctx, "orchestrator.Generate")
	defer span.End()

	output, err := o.generate(ctx, span, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return output, nil
}

func (o *Orchestrator) generate(ctx context.Context, span trace.Span, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	form, tpl, err := o.form(ctx, req.TemplateID, req.Template)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("promptgen.template.id", tpl.ID),
		attribute.String("promptgen.renderer", renderer.Name()),
		attribute.Int("promptgen.fields", len(form.Fields)),
	)

	themeConfig, err := o.resolveTheme(req.ThemeName, req.ThemeVariant)
	if err != nil {
		return nil, err
	}

	options := render.RenderOptions{
		Values:       req.Values,
		Errors:       req.Errors,
		FormErrors:   req.FormErrors,
		HiddenFields: req.Hidden,
		Theme:        themeConfig,
	}
	if req.Compose && len(req.Errors) == 0 {
		text, err := o.compose(ctx, tpl, req.Values)
		if err != nil {
			options.PromptError = prompt.ErrorMessage
		} else {
			options.Prompt = text
		}
	}

	output, err := renderer.Render(ctx, form, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Form returns the form model built for a template id.
func (o *Orchestrator) Form(ctx context.Context, templateID string) (model.FormModel, error) {
	if err := o.initialiseErr; err != nil {
		return model.FormModel{}, err
	}
	ctx, span := o.tracer.Start(ctx, "orchestrator.Form",
		trace.WithAttributes(attribute.String("promptgen.template.id", templateID)))
	defer span.End()

	form, _, err := o.form(ctx, templateID, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return form, err
}

// Compose fills the template identified by templateID with values.
func (o *Orchestrator) Compose(ctx context.Context, templateID string, values map[string]any) (string, error) {
	if err := o.initialiseErr; err != nil {
		return "", err
	}
	ctx, span := o.tracer.Start(ctx, "orchestrator.Compose",
		trace.WithAttributes(attribute.String("promptgen.template.id", templateID)))
	defer span.End()

	tpl, err := o.lookup(ctx, templateID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	text, err := o.compose(ctx, tpl, values)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return text, nil
}

// ComposeTemplate fills an already resolved template with values.
func (o *Orchestrator) ComposeTemplate(ctx context.Context, tpl model.Template, values map[string]any) (string, error) {
	if err := o.initialiseErr; err != nil {
		return "", err
	}
	return o.compose(ctx, tpl, values)
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

func (o *Orchestrator) compose(ctx context.Context, tpl model.Template, values map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := o.composer.Compose(tpl.Content, values)
	if o.composeObserver != nil {
		o.composeObserver(tpl.ID, err)
	}
	if err != nil {
		o.logger.WarnContext(ctx, "prompt composition failed",
			slog.String("template_id", tpl.ID),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("orchestrator: compose %q: %w", tpl.ID, err)
	}
	return text, nil
}

func (o *Orchestrator) form(ctx context.Context, templateID string, inline *model.Template) (model.FormModel, model.Template, error) {
	var tpl model.Template
	if inline != nil {
		tpl = *inline
	} else {
		found, err := o.lookup(ctx, templateID)
		if err != nil {
			return model.FormModel{}, model.Template{}, err
		}
		tpl = found
	}

	form, err := o.builder.Build(tpl)
	if err != nil {
		return model.FormModel{}, model.Template{}, fmt.Errorf("orchestrator: build form model: %w", err)
	}
	if err := o.applyTransformer(ctx, &form); err != nil {
		return model.FormModel{}, model.Template{}, err
	}
	if err := o.applyDecorators(&form); err != nil {
		return model.FormModel{}, model.Template{}, err
	}
	return form, tpl, nil
}

func (o *Orchestrator) lookup(ctx context.Context, templateID string) (model.Template, error) {
	if strings.TrimSpace(templateID) == "" {
		return model.Template{}, errors.New("orchestrator: template id is required")
	}
	if o.templates == nil {
		return model.Template{}, errors.New("orchestrator: template source is nil")
	}
	tpl, err := o.templates.Find(ctx, templateID)
	if err != nil {
		return model.Template{}, fmt.Errorf("orchestrator: find template: %w", err)
	}
	return tpl, nil
}

func (o *Orchestrator) resolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return rendererConfig(selection, o.themeFallbacks), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	renderer, err := o.registry.Resolve("")
	if err != nil {
		return nil, fmt.Errorf("orchestrator: no renderers registered: %w", err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	if len(o.decorators) == 0 || form == nil {
		return nil
	}
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if o.transformer == nil || form == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.templates == nil {
		o.templates = catalog.New()
	}
	if o.builder == nil {
		o.builder = internalmodel.New(internalmodel.Options{Action: FormAction})
	}
	if o.composer == nil {
		o.composer = prompt.New(prompt.WithHTMLEscape(!o.plainText))
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = defaultThemeFallbacks()
	}
	if !o.themeSpecified {
		selector, err := NewManifestSelector(DefaultTheme, DefaultVariant, BuiltinThemeManifest())
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: builtin theme: %w", err)
		} else {
			o.themeSelector = selector
		}
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
}
