package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-promptgen/pkg/model"
)

// Transformer mutates a FormModel after it is built and before decorators
// run. Implementations can relabel fields, inject metadata, or perform
// arbitrary rewrites.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormModel) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormModel) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file.
// Presets are keyed by template id; the "*" entry applies to every template:
//
//	{
//	  "*": {"metadata": {"audience": "internal"}},
//	  "default": {
//	    "description": "Ask for an implementation plan",
//	    "fields": {"how-many-tests?": {"label": "Number of tests"}}
//	  }
//	}
type JSONPresetTransformer struct {
	presets map[string]jsonTransformDocument
}

// WildcardPreset keys the preset applied to every template.
const WildcardPreset = "*"

type jsonTransformDocument struct {
	Description string                    `json:"description"`
	Metadata    map[string]string         `json:"metadata"`
	Fields      map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label string `json:"label"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var presets map[string]jsonTransformDocument
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{presets: presets}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the wildcard preset and then the template's own preset.
// Field patches naming a field the template does not declare are skipped,
// since presets outlive edits to the template body.
func (t *JSONPresetTransformer) Transform(ctx context.Context, form *model.FormModel) error {
	if form == nil {
		return errors.New("json preset transformer: form model is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, key := range []string{WildcardPreset, form.TemplateID} {
		document, ok := t.presets[key]
		if !ok {
			continue
		}
		applyDocument(form, document)
	}
	return nil
}

func applyDocument(form *model.FormModel, document jsonTransformDocument) {
	if strings.TrimSpace(document.Description) != "" {
		form.Description = strings.TrimSpace(document.Description)
	}
	if len(document.Metadata) > 0 {
		form.Metadata = mergeStringMap(form.Metadata, document.Metadata)
	}
	for idx := range form.Fields {
		patch, ok := document.Fields[form.Fields[idx].ID]
		if !ok {
			continue
		}
		if label := strings.TrimSpace(patch.Label); label != "" {
			form.Fields[idx].Label = label
		}
	}
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
