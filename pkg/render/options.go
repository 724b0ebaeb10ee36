package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model.
type RenderOptions struct {
	// Values pre-populates rendered controls keyed by field id. List fields
	// accept []string or []any.
	Values map[string]any
	// Errors surfaces validation feedback keyed by field id.
	Errors map[string][]string
	// FormErrors carries messages that do not belong to a single field.
	FormErrors []string
	// HiddenFields are emitted as hidden inputs, typically the CSRF token.
	HiddenFields map[string]string
	// Prompt is the generated prompt shown next to the form, if any.
	Prompt string
	// PromptError replaces the prompt when generation failed.
	PromptError string
	// Theme carries the resolved theme selection.
	Theme *theme.RendererConfig
}
