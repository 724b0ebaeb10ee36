package vanilla

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/render"
	"github.com/goliatone/go-promptgen/pkg/renderers/vanilla/components"
)

// renderFields renders each field through its component and reports the
// component names in first-use order so their assets can be collected.
func (r *Renderer) renderFields(form model.FormModel, options render.RenderOptions, classes, partials map[string]string) ([]any, []string, error) {
	rendered := make([]any, 0, len(form.Fields))
	var used []string
	seen := make(map[string]struct{})

	for _, field := range form.Fields {
		name := r.componentFor(field)
		descriptor, ok := r.registry.Descriptor(name)
		if !ok {
			return nil, nil, fmt.Errorf("vanilla renderer: component %q not registered for field %q", name, field.ID)
		}

		data := components.ComponentData{
			Template:  r.templates,
			ControlID: controlID(field.ID),
			Errors:    options.Errors[field.ID],
			Classes:   classes,
			Partials:  partials,
		}
		value := options.Values[field.ID]
		if field.Type.IsList() {
			data.Items = render.ListValue(value)
		} else {
			data.Value = render.ScalarValue(value)
		}

		var buf bytes.Buffer
		if err := descriptor.Renderer(&buf, field, data); err != nil {
			return nil, nil, fmt.Errorf("vanilla renderer: render field %q: %w", field.ID, err)
		}
		rendered = append(rendered, buf.String())

		if _, exists := seen[descriptor.Name]; !exists {
			seen[descriptor.Name] = struct{}{}
			used = append(used, descriptor.Name)
		}
	}
	return rendered, used, nil
}

func (r *Renderer) componentFor(field model.Field) string {
	if name, ok := r.overrides[field.Type]; ok && name != "" {
		return name
	}
	return components.ForFieldType(field.Type)
}
