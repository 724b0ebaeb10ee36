package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/render"
)

// Name identifies the renderer inside a render.Registry.
const Name = "tui"

// Renderer implements render.Renderer for terminal-driven sessions. It asks
// for every field of the form in order and serializes the answers.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme: Theme{
			ErrorPrefix: "✗ ",
		},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if _, ok := ParseOutputFormat(string(r.outputFormat)); !ok {
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for the form's fields and serializes the collected values.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(form, values)
}

// Collect prompts for every field and returns the answers keyed by field id.
// Text fields hold a string, number fields hold the trimmed numeric text, and
// list fields hold a []string. Blank number answers are omitted.
func (r *Renderer) Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions) (map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	for _, message := range opts.FormErrors {
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+message)
	}

	state := NewState(opts.Values, opts.Errors)
	for _, field := range form.Fields {
		if err := r.promptField(ctx, field, state); err != nil {
			return nil, err
		}
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return values, nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, state *State) error {
	switch field.Type {
	case model.FieldTypeNumber:
		return r.promptNumber(ctx, field, state)
	case model.FieldTypeTextArray:
		return r.promptList(ctx, field, state)
	default:
		return r.promptText(ctx, field, state)
	}
}

func (r *Renderer) promptText(ctx context.Context, field model.Field, state *State) error {
	current, _ := state.Value(field.ID)
	input, err := r.driver.Input(ctx, InputConfig{
		Message: displayLabel(field),
		Default: render.ScalarValue(current),
		Help:    r.help(field, state),
	})
	if err != nil {
		return err
	}
	state.Set(field.ID, input)
	return nil
}

func (r *Renderer) promptNumber(ctx context.Context, field model.Field, state *State) error {
	current, _ := state.Value(field.ID)
	defaultStr := render.ScalarValue(current)

	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: displayLabel(field),
			Default: defaultStr,
			Help:    r.help(field, state),
		})
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			state.Unset(field.ID)
			return nil
		}
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %s", r.theme.ErrorPrefix, field.Label, render.MessageNotANumber))
			continue
		}

		state.Set(field.ID, trimmed)
		return nil
	}
}

// promptList asks for one item at a time until a blank answer. Existing items
// are offered as defaults in order, so accepting every default keeps them.
func (r *Renderer) promptList(ctx context.Context, field model.Field, state *State) error {
	current, _ := state.Value(field.ID)
	existing := render.ListValue(current)
	help := r.help(field, state)

	items := make([]string, 0, len(existing))
	for idx := 0; ; idx++ {
		defaultVal := ""
		if idx < len(existing) {
			defaultVal = existing[idx]
		}
		input, err := r.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("%s #%d (blank to finish)", displayLabel(field), idx+1),
			Default: defaultVal,
			Help:    help,
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" {
			break
		}
		items = append(items, input)
	}

	state.Set(field.ID, items)
	return nil
}

func (r *Renderer) help(field model.Field, state *State) string {
	messages := state.ErrorsFor(field.ID)
	if len(messages) == 0 {
		return ""
	}
	return r.theme.ErrorPrefix + strings.Join(messages, "; ")
}

func (r *Renderer) serialize(form model.FormModel, values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(form, values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(form, values)), nil
	default:
		return json.Marshal(values)
	}
}

func displayLabel(field model.Field) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	return field.ID
}

// encodeForm mirrors what the HTML form submits: one key per field, repeated
// for list items, so render.DecodeSubmission can read it back.
func encodeForm(form model.FormModel, values map[string]any) string {
	out := url.Values{}
	for _, field := range form.Fields {
		value, ok := values[field.ID]
		if !ok {
			continue
		}
		if field.Type.IsList() {
			for _, item := range render.ListValue(value) {
				out.Add(field.ID, item)
			}
			continue
		}
		out.Set(field.ID, render.ScalarValue(value))
	}
	return out.Encode()
}

func prettyPrint(form model.FormModel, values map[string]any) string {
	var b bytes.Buffer
	for _, field := range form.Fields {
		value, ok := values[field.ID]
		if !ok {
			continue
		}
		if field.Type.IsList() {
			fmt.Fprintf(&b, "%s:\n", displayLabel(field))
			for _, item := range render.ListValue(value) {
				fmt.Fprintf(&b, "  - %s\n", item)
			}
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", displayLabel(field), render.ScalarValue(value))
	}
	return b.String()
}
