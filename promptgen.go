// Package promptgen turns prompt templates with placeholder fields into forms
// and fills the submitted values back into the template.
package promptgen

import (
	"context"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/orchestrator"
	"github.com/goliatone/go-promptgen/pkg/parser"
	"github.com/goliatone/go-promptgen/pkg/prompt"
	"github.com/goliatone/go-promptgen/pkg/render"
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface validation errors.
type RenderOptions = render.RenderOptions

// Request aliases orchestrator.Request for callers using the root package.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// ExtractFields returns the form fields a template declares.
func ExtractFields(content string) []model.Field {
	return parser.ExtractFields(content)
}

// Compose fills content with values. Values are HTML escaped unless
// prompt.WithHTMLEscape(false) is passed.
func Compose(content string, values map[string]any, options ...prompt.Option) (string, error) {
	return prompt.New(options...).Compose(content, values)
}

// GenerateHTML builds the form for templateID and renders it using the named
// renderer. It is the simplest entry point for callers that just want HTML.
func GenerateHTML(ctx context.Context, templateID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		TemplateID: templateID,
		Renderer:   rendererName,
	})
}

// GenerateHTMLFromTemplate renders a form for an in-memory template, bypassing
// the catalog.
func GenerateHTMLFromTemplate(ctx context.Context, tpl model.Template, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Template: &tpl,
		Renderer: rendererName,
	})
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
